/*
Package sqlite provides SQLite-backed persistence for roster data.

PURPOSE:
  Stores employees and their per-KPI achievements. The calculation
  core stays stateless and pure; only the roster collaborator's data
  lives here. In production the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

KEY TABLES:
  employees:    Roster entries (name, role, base salary)
  achievements: One row per (employee, kpi) measurement

PRECISION:
  Monetary and percentage values are stored as decimal text, never as
  SQLite REAL, so what goes in comes back bit-exact.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened with WAL
  (Write-Ahead Logging): multiple readers don't block, single writer
  at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/bonus.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - roster: The value types persisted here
  - api/handlers.go: HTTP layer over this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/bonus-engine/bonus"
	"github.com/warp/bonus-engine/roster"
)

// Store implements roster persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases stable and
	// serializes writes, which SQLite requires anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		base_salary TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS achievements (
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		kpi_type TEXT NOT NULL,
		achievement TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, kpi_type)
	);

	CREATE INDEX IF NOT EXISTS idx_achievements_employee
		ON achievements(employee_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or updates a roster entry.
func (s *Store) SaveEmployee(ctx context.Context, emp roster.Employee) error {
	if err := emp.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, role, base_salary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			base_salary = excluded.base_salary,
			updated_at = excluded.updated_at`,
		emp.ID, emp.Name, string(emp.Role), emp.BaseSalary.String(), now, now)
	if err != nil {
		return fmt.Errorf("save employee: %w", err)
	}
	return nil
}

// GetEmployee returns the employee with the given id, or nil when it
// doesn't exist.
func (s *Store) GetEmployee(ctx context.Context, id string) (*roster.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, base_salary FROM employees WHERE id = ?`, id)

	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]roster.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, role, base_salary FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []roster.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("list employees: %w", err)
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee and, via the foreign key cascade,
// all of its achievements.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (roster.Employee, error) {
	var emp roster.Employee
	var role, salary string
	if err := row.Scan(&emp.ID, &emp.Name, &role, &salary); err != nil {
		return roster.Employee{}, err
	}

	emp.Role = bonus.Role(role)

	value, err := decimal.NewFromString(salary)
	if err != nil {
		return roster.Employee{}, fmt.Errorf("corrupt base_salary %q: %w", salary, err)
	}
	emp.BaseSalary = value
	return emp, nil
}

// =============================================================================
// ACHIEVEMENTS
// =============================================================================

// SetAchievement records (or overwrites) one KPI measurement.
func (s *Store) SetAchievement(ctx context.Context, employeeID string, kpi bonus.KPIType, achievement decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO achievements (employee_id, kpi_type, achievement, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(employee_id, kpi_type) DO UPDATE SET
			achievement = excluded.achievement,
			updated_at = excluded.updated_at`,
		employeeID, string(kpi), achievement.String(), now)
	if err != nil {
		return fmt.Errorf("set achievement: %w", err)
	}
	return nil
}

// ClearAchievement removes one KPI measurement, returning the employee
// to the "not yet measured" state for that KPI.
func (s *Store) ClearAchievement(ctx context.Context, employeeID string, kpi bonus.KPIType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM achievements WHERE employee_id = ? AND kpi_type = ?`,
		employeeID, string(kpi))
	if err != nil {
		return fmt.Errorf("clear achievement: %w", err)
	}
	return nil
}

// GetPerformance returns all recorded measurements for one employee.
// KPIs without measurements are simply absent from the map.
func (s *Store) GetPerformance(ctx context.Context, employeeID string) (bonus.Performance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT kpi_type, achievement FROM achievements WHERE employee_id = ?`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("get performance: %w", err)
	}
	defer rows.Close()

	perf := bonus.Performance{}
	for rows.Next() {
		var kpi, achievement string
		if err := rows.Scan(&kpi, &achievement); err != nil {
			return nil, fmt.Errorf("get performance: %w", err)
		}
		value, err := decimal.NewFromString(achievement)
		if err != nil {
			return nil, fmt.Errorf("corrupt achievement %q: %w", achievement, err)
		}
		perf[bonus.KPIType(kpi)] = value
	}
	return perf, rows.Err()
}

// ListPerformances returns the measurements of every employee keyed by
// employee id. Employees without any measurement are absent.
func (s *Store) ListPerformances(ctx context.Context) (map[string]bonus.Performance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, kpi_type, achievement FROM achievements`)
	if err != nil {
		return nil, fmt.Errorf("list performances: %w", err)
	}
	defer rows.Close()

	all := make(map[string]bonus.Performance)
	for rows.Next() {
		var employeeID, kpi, achievement string
		if err := rows.Scan(&employeeID, &kpi, &achievement); err != nil {
			return nil, fmt.Errorf("list performances: %w", err)
		}
		value, err := decimal.NewFromString(achievement)
		if err != nil {
			return nil, fmt.Errorf("corrupt achievement %q: %w", achievement, err)
		}
		perf, ok := all[employeeID]
		if !ok {
			perf = bonus.Performance{}
			all[employeeID] = perf
		}
		perf[bonus.KPIType(kpi)] = value
	}
	return all, rows.Err()
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset wipes all roster data. Used by demo scenario loading.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"achievements", "employees"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}
