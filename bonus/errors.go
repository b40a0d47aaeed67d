/*
errors.go - Error taxonomy for the bonus engine

PURPOSE:
  The taxonomy is narrow because inputs are pre-validated by
  collaborators. The only fatal class is configuration: a missing or
  malformed bracket table, detected at load time and never recoverable
  mid-calculation. Invalid numeric input (negative achievement or
  salary) is clamped rather than rejected - the engine favors
  availability over strict rejection, see engine.go.

USAGE:
  if errors.Is(err, bonus.ErrTableNotFound) { ... }

  var cfgErr *bonus.ConfigurationError
  if errors.As(err, &cfgErr) {
      log.Fatalf("bad table %s/%s: %v", cfgErr.KPI, cfgErr.Role, cfgErr.Err)
  }

SEE ALSO:
  - tables.go: Where these errors are raised
  - factory/tables.go: Wraps them with source-file context
*/
package bonus

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrTableNotFound is returned when a (KPIType, Role) pair has no
	// bracket table configured.
	ErrTableNotFound = errors.New("no bracket table for kpi/role pair")

	// ErrEmptyTable is returned when a configured table has no brackets.
	ErrEmptyTable = errors.New("bracket table is empty")

	// ErrUnsortedBrackets is returned when thresholds are not ascending.
	ErrUnsortedBrackets = errors.New("bracket thresholds not in ascending order")

	// ErrDuplicateThreshold is returned when two brackets share a threshold.
	ErrDuplicateThreshold = errors.New("duplicate bracket threshold")

	// ErrNegativeThreshold is returned for a threshold below zero.
	ErrNegativeThreshold = errors.New("negative bracket threshold")

	// ErrNegativePercentage is returned for a bonus percentage below zero.
	ErrNegativePercentage = errors.New("negative bonus percentage")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ConfigurationError pinpoints the table cell that failed validation
// or lookup. Fatal at startup/load time.
type ConfigurationError struct {
	KPI  KPIType
	Role Role
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("bracket table %s/%s: %v", e.KPI, e.Role, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err originated from table
// validation or lookup.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
