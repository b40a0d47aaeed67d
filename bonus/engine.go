/*
engine.go - Bonus resolution and aggregation

PURPOSE:
  The only part of the system with domain logic. Resolves an
  achievement percentage to a bonus percentage via threshold matching,
  converts the percentage plus a base salary into a monetary value,
  and aggregates per-KPI values in enumeration order.

RESOLUTION:
  Bracket tables define a step function: scan thresholds ascending and
  take the BasePercentage of the highest bracket whose threshold is
  <= achievement. The function is monotonically non-decreasing and
  left-continuous - a bracket takes effect exactly at its threshold.
  Achievement below every threshold resolves to 0.

CLAMP POLICY:
  Negative achievement behaves as 0 (same as "not yet measured").
  Negative base salary clamps to 0. The engine never rejects numeric
  input; roster data errors belong to the collaborators.

CONCURRENCY:
  Pure and synchronous. An Engine only reads its immutable TableSet
  and returns freshly allocated results, so any number of goroutines
  may share one Engine without coordination. Replacing tables means
  building a new Engine and swapping the pointer.

SEE ALSO:
  - tables.go: Table data and validation
  - types.go: Result and performance types
*/
package bonus

import (
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Engine resolves bonuses against a validated table set.
// The zero value is not usable; construct with NewEngine or
// DefaultEngine.
type Engine struct {
	tables *TableSet
}

// NewEngine validates the table set and returns an engine over it.
// Validation failures are fatal configuration errors.
func NewEngine(tables *TableSet) (*Engine, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return &Engine{tables: tables}, nil
}

// DefaultEngine returns an engine over the built-in tables.
// The default data is known-good, so construction cannot fail.
func DefaultEngine() *Engine {
	engine, err := NewEngine(DefaultTables())
	if err != nil {
		// Unreachable unless DefaultTables itself is broken.
		panic(err)
	}
	return engine
}

// Tables exposes the engine's table set for introspection (reports,
// configuration endpoints). The set is immutable.
func (e *Engine) Tables() *TableSet {
	return e.tables
}

// ResolveBonusPercentage maps an achievement percentage to a bonus
// percentage for the given KPI and role.
//
// The scan keeps the last bracket whose threshold is <= achievement,
// so if duplicate thresholds ever slipped past validation the
// later-defined bracket wins.
func (e *Engine) ResolveBonusPercentage(kpi KPIType, achievement decimal.Decimal, role Role) (decimal.Decimal, error) {
	brackets, err := e.tables.TableFor(kpi, role)
	if err != nil {
		return decimal.Zero, err
	}

	if achievement.IsNegative() {
		achievement = decimal.Zero
	}

	pct := decimal.Zero
	for _, b := range brackets {
		if b.Attaining.GreaterThan(achievement) {
			break
		}
		pct = b.BasePercentage
	}
	return pct, nil
}

// BonusValue converts a bonus percentage into a monetary value:
// baseSalary * pct / 100, at full precision. Rounding to currency
// subunits happens only at presentation or export time to avoid
// compounding error when summing KPIs.
func BonusValue(baseSalary, pct decimal.Decimal) decimal.Decimal {
	if baseSalary.IsNegative() {
		baseSalary = decimal.Zero
	}
	return baseSalary.Mul(pct).Div(oneHundred)
}

// CalculateAll emits one CalculationResult per KPI type in enumeration
// order. KPIs absent from perf count as achievement 0. Calling twice
// with identical inputs yields identical sequences.
func (e *Engine) CalculateAll(role Role, baseSalary decimal.Decimal, perf Performance) ([]CalculationResult, error) {
	results := make([]CalculationResult, 0, len(kpiOrder))
	for _, kpi := range kpiOrder {
		achievement := perf.Achievement(kpi)
		if achievement.IsNegative() {
			achievement = decimal.Zero
		}

		pct, err := e.ResolveBonusPercentage(kpi, achievement, role)
		if err != nil {
			return nil, err
		}

		results = append(results, CalculationResult{
			KPIType:         kpi,
			Achievement:     achievement,
			BonusPercentage: pct,
			BonusValue:      BonusValue(baseSalary, pct),
		})
	}
	return results, nil
}
