/*
Package bonus computes performance-based bonus payments.

PURPOSE:
  Maps (KPI type, achievement percentage, employee role) to a bonus
  percentage via fixed attainment-bracket tables, converts percentages
  into monetary values against a base salary, and aggregates per-KPI
  values into a total reward.

KEY CONCEPTS IN THIS FILE (types.go):
  - KPIType: Closed set of bonus categories (four variants)
  - Role: Closed set of reward tiers (manager vs team)
  - PrizeBracket: One (threshold, bonus percentage) step
  - Performance: Per-KPI achievement percentages for one employee
  - CalculationResult: Engine output for a single KPI

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so currency results are bit-exact
     and reproducible by an independent implementation
  2. Closed enums: KPI types and roles are fixed variants; table lookups
     are checked at engine construction, not per call
  3. Purity: All types here are immutable value objects; the engine
     holds no state across calls

USAGE:
  engine := bonus.DefaultEngine()
  results, err := engine.CalculateAll(bonus.RoleTeam, salary, perf)
  total := bonus.Total(results)

SEE ALSO:
  - tables.go: Bracket table repository and default data
  - engine.go: Resolution and aggregation algorithms
  - errors.go: Configuration error taxonomy
*/
package bonus

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// KPI TYPES
// =============================================================================

// KPIType identifies a bonus category. The set is closed: exactly four
// variants exist and they are not extensible at runtime.
type KPIType string

const (
	// KPIBalancedScorecard is the monthly balanced-scorecard metric.
	KPIBalancedScorecard KPIType = "balanced_scorecard"

	// KPIManagerial is the quarterly managerial metric.
	KPIManagerial KPIType = "managerial"

	// KPIOperational is the monthly operational metric.
	KPIOperational KPIType = "operational"

	// KPISpecial is the quarterly special metric.
	KPISpecial KPIType = "special"
)

// kpiOrder is the fixed enumeration order. CalculateAll emits results in
// this order so report columns stay stable.
var kpiOrder = []KPIType{
	KPIBalancedScorecard,
	KPIManagerial,
	KPIOperational,
	KPISpecial,
}

// AllKPITypes returns the KPI types in enumeration order.
// The returned slice is a copy; callers may reorder it freely.
func AllKPITypes() []KPIType {
	out := make([]KPIType, len(kpiOrder))
	copy(out, kpiOrder)
	return out
}

// Valid reports whether k is one of the four known KPI types.
func (k KPIType) Valid() bool {
	switch k {
	case KPIBalancedScorecard, KPIManagerial, KPIOperational, KPISpecial:
		return true
	}
	return false
}

// Label returns a human-readable name for reports and statements.
func (k KPIType) Label() string {
	switch k {
	case KPIBalancedScorecard:
		return "Balanced Scorecard (monthly)"
	case KPIManagerial:
		return "Managerial (quarterly)"
	case KPIOperational:
		return "Operational (monthly)"
	case KPISpecial:
		return "Special (quarterly)"
	default:
		return string(k)
	}
}

// =============================================================================
// ROLES
// =============================================================================

// Role selects which bracket table scale applies. Managers and team
// members are rewarded on different scales for every KPI type.
type Role string

const (
	RoleManager Role = "manager"
	RoleTeam    Role = "team"
)

// AllRoles returns both roles.
func AllRoles() []Role {
	return []Role{RoleManager, RoleTeam}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleManager || r == RoleTeam
}

// =============================================================================
// BRACKETS
// =============================================================================

// PrizeBracket is one step of an attainment table: achieving at least
// Attaining percent of target earns BasePercentage of base salary.
// Brackets within a table are sorted ascending by Attaining with no
// duplicate thresholds.
type PrizeBracket struct {
	Attaining      decimal.Decimal
	BasePercentage decimal.Decimal
}

// =============================================================================
// PERFORMANCE
// =============================================================================

// Performance maps KPI types to measured achievement percentages.
// Keys are optional: an absent KPI means "not yet measured" and is
// treated as achievement 0.
type Performance map[KPIType]decimal.Decimal

// Achievement returns the recorded achievement for k, or zero when the
// KPI has no measurement yet.
func (p Performance) Achievement(k KPIType) decimal.Decimal {
	if v, ok := p[k]; ok {
		return v
	}
	return decimal.Zero
}

// =============================================================================
// RESULTS
// =============================================================================

// CalculationResult is the engine's output for one KPI.
// BonusValue = baseSalary * BonusPercentage / 100, kept at full
// precision; rounding to currency subunits happens only at
// presentation or export time.
type CalculationResult struct {
	KPIType         KPIType
	Achievement     decimal.Decimal
	BonusPercentage decimal.Decimal
	BonusValue      decimal.Decimal
}

// Total sums the bonus values of a calculation run. It is the literal
// sum of the per-KPI values with no independent rounding.
func Total(results []CalculationResult) decimal.Decimal {
	total := decimal.Zero
	for _, r := range results {
		total = total.Add(r.BonusValue)
	}
	return total
}
