/*
Package factory provides JSON/YAML to Go bracket-table conversion.

PURPOSE:
  Converts table definitions into a validated bonus.TableSet. This
  enables bracket configuration without code changes - compensation
  admins can define tables in a file or POST them through the API,
  and the factory builds the proper Go structs.

WHY A TEXT SCHEMA?
  - Non-developers can adjust attainment scales
  - Version control for table definitions
  - The same schema serves the API body and the -tables startup file

SCHEMA:
  {
    "tables": [
      {
        "kpi": "balanced_scorecard",
        "role": "team",
        "brackets": [
          {"attaining": "80", "base_percentage": "2"},
          {"attaining": "100", "base_percentage": "8"}
        ]
      },
      ...one entry per (kpi, role) pair...
    ]
  }

  Numeric fields accept bare numbers or strings; they are parsed as
  exact decimals either way, never through float64.

VALIDATION:
  Schema-level problems (unknown kpi/role, malformed numbers, repeated
  pairs) are accumulated into ValidationErrors so a broken file reports
  everything at once. Structural table invariants (coverage, ordering,
  uniqueness) are then enforced by bonus.TableSet.Validate.

SEE ALSO:
  - bonus/tables.go: TableSet and validation invariants
  - cmd/server/main.go: -tables flag wiring
*/
package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/bonus-engine/bonus"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// TablesJSON is the external representation of a full table set.
type TablesJSON struct {
	Version int         `json:"version,omitempty" yaml:"version,omitempty"`
	Tables  []TableJSON `json:"tables" yaml:"tables"`
}

// TableJSON is one (kpi, role) cell of the matrix.
type TableJSON struct {
	KPI      string        `json:"kpi" yaml:"kpi"`
	Role     string        `json:"role" yaml:"role"`
	Brackets []BracketJSON `json:"brackets" yaml:"brackets"`
}

// BracketJSON is one step of a table.
type BracketJSON struct {
	Attaining      Number `json:"attaining" yaml:"attaining"`
	BasePercentage Number `json:"base_percentage" yaml:"base_percentage"`
}

// Number carries a numeric literal without ever passing through
// float64, so table data stays exact. It accepts bare numbers or
// quoted strings in both JSON and YAML.
type Number string

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(s)
		return nil
	}
	*n = Number(data)
	return nil
}

func (n *Number) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected scalar, got %v", value.Kind)
	}
	*n = Number(value.Value)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(n))
}

// Decimal parses the literal.
func (n Number) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(string(n)))
}

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

// ValidationError describes one schema-level problem, with enough
// context to fix the source file.
type ValidationError struct {
	Source  string // file path or "request"
	Table   int    // index into tables, -1 for document-level issues
	Message string
}

func (e ValidationError) Error() string {
	if e.Table < 0 {
		return fmt.Sprintf("%s: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("%s: tables[%d]: %s", e.Source, e.Table, e.Message)
}

// ValidationErrors accumulates schema problems so a broken definition
// reports everything in one pass.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// =============================================================================
// CONVERSION
// =============================================================================

// ParseTables parses a JSON document into a validated TableSet.
func ParseTables(data []byte, source string) (*bonus.TableSet, error) {
	var tj TablesJSON
	if err := json.Unmarshal(data, &tj); err != nil {
		return nil, fmt.Errorf("parse table definitions: %w", err)
	}
	return FromJSON(tj, source)
}

// FromJSON converts a TablesJSON document into a validated
// bonus.TableSet. Schema problems come back as ValidationErrors;
// structural problems as *bonus.ConfigurationError.
func FromJSON(tj TablesJSON, source string) (*bonus.TableSet, error) {
	if source == "" {
		source = "request"
	}

	var vErrs ValidationErrors
	seen := make(map[string]int)
	ts := bonus.NewTableSet()

	for i, table := range tj.Tables {
		kpi := bonus.KPIType(table.KPI)
		if !kpi.Valid() {
			vErrs = append(vErrs, ValidationError{source, i, fmt.Sprintf("unknown kpi %q", table.KPI)})
			continue
		}
		role := bonus.Role(table.Role)
		if !role.Valid() {
			vErrs = append(vErrs, ValidationError{source, i, fmt.Sprintf("unknown role %q", table.Role)})
			continue
		}

		pair := table.KPI + "/" + table.Role
		if prev, dup := seen[pair]; dup {
			vErrs = append(vErrs, ValidationError{source, i, fmt.Sprintf("pair %s already defined at tables[%d]", pair, prev)})
			continue
		}
		seen[pair] = i

		brackets := make([]bonus.PrizeBracket, 0, len(table.Brackets))
		ok := true
		for j, b := range table.Brackets {
			attaining, err := b.Attaining.Decimal()
			if err != nil {
				vErrs = append(vErrs, ValidationError{source, i, fmt.Sprintf("brackets[%d]: bad attaining %q", j, b.Attaining)})
				ok = false
				continue
			}
			pct, err := b.BasePercentage.Decimal()
			if err != nil {
				vErrs = append(vErrs, ValidationError{source, i, fmt.Sprintf("brackets[%d]: bad base_percentage %q", j, b.BasePercentage)})
				ok = false
				continue
			}
			brackets = append(brackets, bonus.PrizeBracket{Attaining: attaining, BasePercentage: pct})
		}
		if ok {
			ts.Put(kpi, role, brackets)
		}
	}

	if len(vErrs) > 0 {
		return nil, vErrs
	}
	if err := ts.Validate(); err != nil {
		return nil, err
	}
	return ts, nil
}

// LoadTablesFile loads table definitions from a YAML or JSON file.
// YAML is a superset here: .json files go through the JSON decoder so
// that Number handling matches API request bodies exactly.
func LoadTablesFile(path string) (*bonus.TableSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseTables(data, path)
	}

	var tj TablesJSON
	if err := yaml.Unmarshal(data, &tj); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return FromJSON(tj, path)
}

// ToJSON renders a TableSet back into the external schema, in KPI
// enumeration order. Used by the table introspection endpoint.
func ToJSON(ts *bonus.TableSet) (TablesJSON, error) {
	var tj TablesJSON
	for _, kpi := range bonus.AllKPITypes() {
		for _, role := range bonus.AllRoles() {
			brackets, err := ts.TableFor(kpi, role)
			if err != nil {
				return TablesJSON{}, err
			}
			table := TableJSON{KPI: string(kpi), Role: string(role)}
			for _, b := range brackets {
				table.Brackets = append(table.Brackets, BracketJSON{
					Attaining:      Number(b.Attaining.String()),
					BasePercentage: Number(b.BasePercentage.String()),
				})
			}
			tj.Tables = append(tj.Tables, table)
		}
	}
	return tj, nil
}
