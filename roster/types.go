/*
Package roster owns employee and performance data.

PURPOSE:
  The calculation core never stores or parses anything; this package is
  the collaborator that does. It defines the Employee value object,
  maps free-form role names onto the closed role set, and handles
  delimited text import/export, handing the core only already
  normalized numbers and valid role tags.

SEE ALSO:
  - csv.go: Import/export with locale-aware numeric normalization
  - store/sqlite: Persistence for roster data
*/
package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/bonus-engine/bonus"
)

var (
	// ErrUnknownRole is returned when a role name matches neither tier.
	ErrUnknownRole = errors.New("unknown role name")

	// ErrNegativeSalary is returned for roster data carrying a negative
	// base salary.
	ErrNegativeSalary = errors.New("negative base salary")

	// ErrEmptyName is returned for roster data without an employee name.
	ErrEmptyName = errors.New("empty employee name")
)

// Employee is a roster entry. The calculation core only reads the role
// and base salary; it never mutates an Employee.
type Employee struct {
	ID         string
	Name       string
	BaseSalary decimal.Decimal
	Role       bonus.Role
}

// Validate checks roster-level invariants before an employee is stored
// or handed to the engine.
func (e Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if !e.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, e.Role)
	}
	if e.BaseSalary.IsNegative() {
		return ErrNegativeSalary
	}
	return nil
}

// ParseRole maps a free-form role name onto the closed role set.
// Matching is case-insensitive and accepts both English and the
// Portuguese names used by legacy exports.
func ParseRole(s string) (bonus.Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "manager", "gerente":
		return bonus.RoleManager, nil
	case "team", "equipe", "time":
		return bonus.RoleTeam, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}
