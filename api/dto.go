/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY AND PERCENTAGES:
  All decimal values cross the wire as strings. Salaries and achievements
  keep full precision; computed bonus amounts are rendered with two decimal
  places since they are presentation-level currency values.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/tables.go: TablesJSON type reused for table endpoints
*/
package api

import (
	"github.com/warp/bonus-engine/bonus"
	"github.com/warp/bonus-engine/factory"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	BaseSalary string `json:"base_salary"`
}

// CreateEmployeeRequest is the request to create or update an employee.
// BaseSalary accepts either a JSON number or a quoted decimal string.
type CreateEmployeeRequest struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Role       string         `json:"role"`
	BaseSalary factory.Number `json:"base_salary"`
}

// AchievementRequest records a measured achievement percentage for one KPI.
type AchievementRequest struct {
	Achievement factory.Number `json:"achievement"`
}

// CalculationResultDTO is the per-KPI line of a bonus calculation.
type CalculationResultDTO struct {
	KPI             string `json:"kpi"`
	Label           string `json:"label"`
	Achievement     string `json:"achievement"`
	BonusPercentage string `json:"bonus_percentage"`
	BonusValue      string `json:"bonus_value"`
}

// BonusReportDTO is the full calculation for one employee.
type BonusReportDTO struct {
	Employee EmployeeDTO            `json:"employee"`
	Results  []CalculationResultDTO `json:"results"`
	Total    string                 `json:"total"`
}

// TablesDTO wraps the bracket table configuration for introspection
// and replacement. It reuses the factory wire format so the same JSON
// can be POSTed back or written to a -tables file.
type TablesDTO struct {
	factory.TablesJSON
}

// ImportResultDTO summarizes a roster CSV import.
type ImportResultDTO struct {
	Imported int              `json:"imported"`
	Rejected []ImportErrorDTO `json:"rejected"`
}

// ImportErrorDTO reports one rejected CSV row.
type ImportErrorDTO struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toResultDTO(res bonus.CalculationResult) CalculationResultDTO {
	return CalculationResultDTO{
		KPI:             string(res.KPIType),
		Label:           res.KPIType.Label(),
		Achievement:     res.Achievement.String(),
		BonusPercentage: res.BonusPercentage.String(),
		BonusValue:      res.BonusValue.StringFixed(2),
	}
}

func toResultDTOs(results []bonus.CalculationResult) []CalculationResultDTO {
	dtos := make([]CalculationResultDTO, len(results))
	for i, res := range results {
		dtos[i] = toResultDTO(res)
	}
	return dtos
}
