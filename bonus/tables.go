/*
tables.go - Bracket table repository

PURPOSE:
  Holds the (KPIType x Role) matrix of attainment-bracket tables as
  static configuration and exposes lookup plus load-time validation.
  Pure data: tables have no behavior beyond lookup.

VALIDATION:
  A TableSet is validated once (at engine construction or config load),
  never per resolution call. Validation enforces:
  - Full coverage: every (KPIType, Role) pair has a table
  - Non-empty tables
  - Thresholds sorted strictly ascending (unique by construction)
  - Non-negative thresholds and bonus percentages

DEFAULT DATA:
  DefaultTables returns the built-in tables. Operators can replace them
  with a validated custom set (see factory package); replacement is a
  whole-set swap so concurrent resolutions never observe a partial
  update.

SEE ALSO:
  - engine.go: Resolution algorithm over these tables
  - factory/tables.go: JSON/YAML table configuration
*/
package bonus

import (
	"github.com/shopspring/decimal"
)

// tableKey addresses one cell of the KPI x role matrix.
type tableKey struct {
	kpi  KPIType
	role Role
}

// TableSet is the full matrix of bracket tables. It is immutable after
// validation; all engine reads are lock-free.
type TableSet struct {
	tables map[tableKey][]PrizeBracket
}

// NewTableSet returns an empty table set. Call Put for each
// (KPIType, Role) pair, then Validate before use.
func NewTableSet() *TableSet {
	return &TableSet{tables: make(map[tableKey][]PrizeBracket)}
}

// Put sets the bracket table for a (KPIType, Role) pair. The slice is
// copied so later mutation by the caller cannot reach the set.
func (ts *TableSet) Put(kpi KPIType, role Role, brackets []PrizeBracket) {
	cp := make([]PrizeBracket, len(brackets))
	copy(cp, brackets)
	ts.tables[tableKey{kpi, role}] = cp
}

// TableFor returns the exact bracket sequence configured for the pair.
// A missing pair is a configuration defect, not a runtime business
// case: valid enum inputs against a validated set never fail.
func (ts *TableSet) TableFor(kpi KPIType, role Role) ([]PrizeBracket, error) {
	brackets, ok := ts.tables[tableKey{kpi, role}]
	if !ok {
		return nil, &ConfigurationError{KPI: kpi, Role: role, Err: ErrTableNotFound}
	}
	return brackets, nil
}

// Validate checks full coverage and per-table invariants. It returns
// the first violation found as a *ConfigurationError.
func (ts *TableSet) Validate() error {
	for _, kpi := range kpiOrder {
		for _, role := range AllRoles() {
			brackets, ok := ts.tables[tableKey{kpi, role}]
			if !ok {
				return &ConfigurationError{KPI: kpi, Role: role, Err: ErrTableNotFound}
			}
			if err := validateBrackets(brackets); err != nil {
				return &ConfigurationError{KPI: kpi, Role: role, Err: err}
			}
		}
	}
	return nil
}

func validateBrackets(brackets []PrizeBracket) error {
	if len(brackets) == 0 {
		return ErrEmptyTable
	}
	for i, b := range brackets {
		if b.Attaining.IsNegative() {
			return ErrNegativeThreshold
		}
		if b.BasePercentage.IsNegative() {
			return ErrNegativePercentage
		}
		if i == 0 {
			continue
		}
		switch b.Attaining.Cmp(brackets[i-1].Attaining) {
		case 0:
			return ErrDuplicateThreshold
		case -1:
			return ErrUnsortedBrackets
		}
	}
	return nil
}

// =============================================================================
// DEFAULT TABLES
// =============================================================================

// dec parses a decimal literal. Only used on compile-time constants
// below, so a malformed literal fails at package init.
func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func br(attaining, pct string) PrizeBracket {
	return PrizeBracket{Attaining: dec(attaining), BasePercentage: dec(pct)}
}

// DefaultTables returns the built-in bracket matrix. Sequences are
// distinct per role even for the same KPI type: managers and team
// members are rewarded on different scales.
func DefaultTables() *TableSet {
	ts := NewTableSet()

	ts.Put(KPIBalancedScorecard, RoleTeam, []PrizeBracket{
		br("80", "2"), br("90", "4"), br("95", "6"),
		br("100", "8"), br("110", "10"), br("120", "12"),
	})
	ts.Put(KPIBalancedScorecard, RoleManager, []PrizeBracket{
		br("80", "4"), br("90", "6"), br("95", "9"),
		br("100", "12"), br("110", "15"), br("120", "18"),
	})

	ts.Put(KPIManagerial, RoleTeam, []PrizeBracket{
		br("85", "1"), br("95", "2.5"), br("100", "5"),
		br("105", "6.5"), br("115", "8"),
	})
	ts.Put(KPIManagerial, RoleManager, []PrizeBracket{
		br("85", "3"), br("95", "6"), br("100", "10"),
		br("105", "12"), br("115", "15"),
	})

	ts.Put(KPIOperational, RoleTeam, []PrizeBracket{
		br("70", "1.5"), br("80", "3"), br("90", "5"),
		br("100", "8"), br("120", "11"),
	})
	ts.Put(KPIOperational, RoleManager, []PrizeBracket{
		br("70", "2"), br("80", "4"), br("90", "6"),
		br("100", "9"), br("120", "13"),
	})

	ts.Put(KPISpecial, RoleTeam, []PrizeBracket{
		br("90", "2"), br("100", "4"), br("110", "6"),
		br("125", "9"), br("150", "12"),
	})
	ts.Put(KPISpecial, RoleManager, []PrizeBracket{
		br("90", "4"), br("100", "7"), br("110", "10"),
		br("125", "14"), br("150", "18"),
	})

	return ts
}
