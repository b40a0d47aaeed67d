/*
handlers.go - HTTP API handlers for the bonus calculation system

PURPOSE:
  Exposes the bonus engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                       List all employees
    POST   /api/employees                       Create employee
    GET    /api/employees/{id}                  Get employee details
    PUT    /api/employees/{id}                  Update employee
    DELETE /api/employees/{id}                  Delete employee

  Achievements:
    PUT    /api/employees/{id}/achievements/{kpi}  Record achievement
    DELETE /api/employees/{id}/achievements/{kpi}  Clear achievement

  Calculation:
    GET    /api/employees/{id}/bonus            Per-KPI bonus calculation
    GET    /api/employees/{id}/statement        PDF bonus statement

  Roster:
    POST   /api/roster/import                   Import roster CSV
    GET    /api/reports/bonus.csv               Export bonus report CSV

  Tables:
    GET    /api/tables                          Current bracket tables
    PUT    /api/tables                          Replace bracket tables

  Scenarios:
    GET    /api/scenarios                       List demo scenarios
    POST   /api/scenarios/load                  Load a demo scenario
    POST   /api/scenarios/reset                 Reset database

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - engine: The calculation engine, swapped atomically on table replacement

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (engine, roster, report)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 422: Bracket table configuration errors
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/bonus-engine/bonus"
	"github.com/warp/bonus-engine/factory"
	"github.com/warp/bonus-engine/report"
	"github.com/warp/bonus-engine/roster"
	"github.com/warp/bonus-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	// mu guards engine and currentScenario: table replacement swaps
	// the engine atomically while calculations are in flight, and
	// scenario tracking is read and written from concurrent requests.
	mu              sync.RWMutex
	engine          *bonus.Engine
	currentScenario string
}

// NewHandler creates a new handler with the given store and engine.
func NewHandler(store *sqlite.Store, engine *bonus.Engine) *Handler {
	return &Handler{
		Store:  store,
		engine: engine,
	}
}

// Engine returns the current calculation engine.
func (h *Handler) Engine() *bonus.Engine {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.engine
}

func (h *Handler) swapEngine(engine *bonus.Engine) {
	h.mu.Lock()
	h.engine = engine
	h.mu.Unlock()
}

func (h *Handler) setCurrentScenario(id string) {
	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
}

func (h *Handler) scenarioID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentScenario
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee. The ID is generated when the
// request does not supply one.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp, err := employeeFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeStoreError(w, "Failed to create employee", err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// UpdateEmployee replaces an existing employee record.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = id

	emp, err := employeeFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeStoreError(w, "Failed to update employee", err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// DeleteEmployee removes an employee and their recorded achievements.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteEmployee(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete employee", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// ACHIEVEMENT HANDLERS
// =============================================================================

// SetAchievement records a measured achievement percentage for one KPI.
func (h *Handler) SetAchievement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	kpi := bonus.KPIType(chi.URLParam(r, "kpi"))
	if !kpi.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown KPI type: %s", kpi), nil)
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	var req AchievementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	achievement, err := req.Achievement.Decimal()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid achievement value", err)
		return
	}

	if err := h.Store.SetAchievement(r.Context(), id, kpi, achievement); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save achievement", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"employee_id": id,
		"kpi":         string(kpi),
		"achievement": achievement.String(),
	})
}

// ClearAchievement marks a KPI as unmeasured for an employee.
func (h *Handler) ClearAchievement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	kpi := bonus.KPIType(chi.URLParam(r, "kpi"))
	if !kpi.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown KPI type: %s", kpi), nil)
		return
	}

	if err := h.Store.ClearAchievement(r.Context(), id, kpi); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear achievement", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// GetBonus calculates the full bonus breakdown for an employee.
func (h *Handler) GetBonus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	perf, err := h.Store.GetPerformance(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get achievements", err)
		return
	}

	results, err := h.Engine().CalculateAll(emp.Role, emp.BaseSalary, perf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to calculate bonus", err)
		return
	}

	writeJSON(w, http.StatusOK, BonusReportDTO{
		Employee: toEmployeeDTO(*emp),
		Results:  toResultDTOs(results),
		Total:    bonus.Total(results).StringFixed(2),
	})
}

// GetStatement renders the bonus calculation as a PDF statement.
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := r.Context()

	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	perf, err := h.Store.GetPerformance(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get achievements", err)
		return
	}

	results, err := h.Engine().CalculateAll(emp.Role, emp.BaseSalary, perf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to calculate bonus", err)
		return
	}

	var buf bytes.Buffer
	st := report.Statement{
		Employee: *emp,
		Results:  results,
		IssuedAt: time.Now(),
	}
	if err := report.WritePDF(&buf, st); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render statement", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="bonus-statement-%s.pdf"`, emp.ID))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// =============================================================================
// ROSTER HANDLERS
// =============================================================================

// ImportRoster ingests a roster CSV. Valid rows are stored, broken rows
// are reported back with their line numbers.
func (h *Handler) ImportRoster(w http.ResponseWriter, r *http.Request) {
	rows, rowErrs, err := roster.ImportCSV(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read CSV", err)
		return
	}

	ctx := r.Context()
	imported := 0
	rejected := make([]ImportErrorDTO, 0, len(rowErrs))
	for _, re := range rowErrs {
		rejected = append(rejected, ImportErrorDTO{Line: re.Line, Error: re.Err.Error()})
	}

	for _, row := range rows {
		emp := row.Employee
		if emp.ID == "" {
			emp.ID = uuid.NewString()
		}
		if err := h.Store.SaveEmployee(ctx, emp); err != nil {
			rejected = append(rejected, ImportErrorDTO{Error: err.Error()})
			continue
		}
		for kpi, achievement := range row.Performance {
			if err := h.Store.SetAchievement(ctx, emp.ID, kpi, achievement); err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to save achievement", err)
				return
			}
		}
		imported++
	}

	writeJSON(w, http.StatusOK, ImportResultDTO{
		Imported: imported,
		Rejected: rejected,
	})
}

// ExportReport streams the bonus report for the whole roster as CSV.
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	employees, err := h.Store.ListEmployees(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	performances, err := h.Store.ListPerformances(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list achievements", err)
		return
	}

	engine := h.Engine()
	lines := make([]roster.ReportLine, 0, len(employees))
	for _, emp := range employees {
		results, err := engine.CalculateAll(emp.Role, emp.BaseSalary, performances[emp.ID])
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to calculate bonus", err)
			return
		}
		lines = append(lines, roster.ReportLine{
			Employee: emp,
			Results:  results,
			Total:    bonus.Total(results),
		})
	}

	var buf bytes.Buffer
	if err := roster.ExportCSV(&buf, lines); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to write CSV", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="bonus-report.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// =============================================================================
// TABLE HANDLERS
// =============================================================================

// GetTables returns the bracket tables the engine is currently using.
func (h *Handler) GetTables(w http.ResponseWriter, r *http.Request) {
	tj, err := factory.ToJSON(h.Engine().Tables())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to serialize tables", err)
		return
	}
	writeJSON(w, http.StatusOK, TablesDTO{TablesJSON: tj})
}

// ReplaceTables validates a new table configuration and swaps the
// engine atomically. A rejected configuration leaves the running
// engine untouched.
func (h *Handler) ReplaceTables(w http.ResponseWriter, r *http.Request) {
	var tj factory.TablesJSON
	if err := json.NewDecoder(r.Body).Decode(&tj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tables, err := factory.FromJSON(tj, "api")
	if err != nil {
		status := http.StatusBadRequest
		if bonus.IsConfigurationError(err) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, "Invalid table configuration", err)
		return
	}

	engine, err := bonus.NewEngine(tables)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid table configuration", err)
		return
	}
	h.swapEngine(engine)

	writeJSON(w, http.StatusOK, map[string]string{"status": "replaced"})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetDatabase clears all data and restores the default tables.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	h.swapEngine(bonus.DefaultEngine())
	h.setCurrentScenario("")

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func toEmployeeDTO(e roster.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         e.ID,
		Name:       e.Name,
		Role:       string(e.Role),
		BaseSalary: e.BaseSalary.String(),
	}
}

func employeeFromRequest(req CreateEmployeeRequest) (roster.Employee, error) {
	role, err := roster.ParseRole(req.Role)
	if err != nil {
		return roster.Employee{}, err
	}
	salary, err := req.BaseSalary.Decimal()
	if err != nil {
		return roster.Employee{}, fmt.Errorf("base_salary: %w", err)
	}
	emp := roster.Employee{
		ID:         req.ID,
		Name:       strings.TrimSpace(req.Name),
		Role:       role,
		BaseSalary: salary,
	}
	return emp, emp.Validate()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, roster.ErrUnknownRole),
		errors.Is(err, roster.ErrNegativeSalary),
		errors.Is(err, roster.ErrEmptyName):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
