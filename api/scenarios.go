/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates employees and their
	measured achievements to demonstrate specific engine behavior.

AVAILABLE SCENARIOS:

	quarterly-review: Mixed roles with every KPI measured
	new-team:         Recently formed team, most KPIs still unmeasured
	overachievers:    Achievements past the top brackets

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create employees
 3. Record achievement percentages per KPI

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "quarterly-review"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, h)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase handler
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/warp/bonus-engine/bonus"
	"github.com/warp/bonus-engine/roster"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "quarterly-review",
		Name:        "Quarterly Review",
		Description: "Mixed roles with every KPI measured",
	},
	{
		ID:          "new-team",
		Name:        "New Team",
		Description: "Recently formed team, most KPIs still unmeasured",
	},
	{
		ID:          "overachievers",
		Name:        "Overachievers",
		Description: "Achievements past the top brackets",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	current := h.scenarioID()
	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "quarterly-review":
		err = loadQuarterlyReviewScenario(ctx, h)
	case "new-team":
		err = loadNewTeamScenario(ctx, h)
	case "overachievers":
		err = loadOverachieversScenario(ctx, h)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario: "+req.ScenarioID, nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.setCurrentScenario(req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
	})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

type scenarioEmployee struct {
	employee     roster.Employee
	achievements map[bonus.KPIType]string
}

func (h *Handler) loadScenarioEmployees(ctx context.Context, members []scenarioEmployee) error {
	for _, m := range members {
		if err := h.Store.SaveEmployee(ctx, m.employee); err != nil {
			return err
		}
		for kpi, achievement := range m.achievements {
			v, err := decimal.NewFromString(achievement)
			if err != nil {
				return err
			}
			if err := h.Store.SetAchievement(ctx, m.employee.ID, kpi, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadQuarterlyReviewScenario(ctx context.Context, h *Handler) error {
	return h.loadScenarioEmployees(ctx, []scenarioEmployee{
		{
			employee: roster.Employee{
				ID:         "emp-ana",
				Name:       "Ana Souza",
				Role:       bonus.RoleManager,
				BaseSalary: decimal.NewFromInt(12000),
			},
			achievements: map[bonus.KPIType]string{
				bonus.KPIBalancedScorecard: "102.5",
				bonus.KPIManagerial:        "97",
				bonus.KPIOperational:       "88",
				bonus.KPISpecial:           "110",
			},
		},
		{
			employee: roster.Employee{
				ID:         "emp-bruno",
				Name:       "Bruno Lima",
				Role:       bonus.RoleTeam,
				BaseSalary: decimal.NewFromInt(5000),
			},
			achievements: map[bonus.KPIType]string{
				bonus.KPIBalancedScorecard: "100",
				bonus.KPIManagerial:        "85",
				bonus.KPIOperational:       "95",
				bonus.KPISpecial:           "90",
			},
		},
		{
			employee: roster.Employee{
				ID:         "emp-clara",
				Name:       "Clara Mendes",
				Role:       bonus.RoleTeam,
				BaseSalary: decimal.RequireFromString("6750.50"),
			},
			achievements: map[bonus.KPIType]string{
				bonus.KPIBalancedScorecard: "79.99",
				bonus.KPIManagerial:        "105",
				bonus.KPIOperational:       "120",
				bonus.KPISpecial:           "100",
			},
		},
	})
}

func loadNewTeamScenario(ctx context.Context, h *Handler) error {
	return h.loadScenarioEmployees(ctx, []scenarioEmployee{
		{
			employee: roster.Employee{
				ID:         "emp-diego",
				Name:       "Diego Ferreira",
				Role:       bonus.RoleManager,
				BaseSalary: decimal.NewFromInt(9500),
			},
			achievements: map[bonus.KPIType]string{
				bonus.KPIOperational: "92",
			},
		},
		{
			employee: roster.Employee{
				ID:         "emp-elisa",
				Name:       "Elisa Rocha",
				Role:       bonus.RoleTeam,
				BaseSalary: decimal.NewFromInt(4200),
			},
			// No measurements yet: every KPI contributes zero.
			achievements: nil,
		},
	})
}

func loadOverachieversScenario(ctx context.Context, h *Handler) error {
	return h.loadScenarioEmployees(ctx, []scenarioEmployee{
		{
			employee: roster.Employee{
				ID:         "emp-fabio",
				Name:       "Fabio Torres",
				Role:       bonus.RoleManager,
				BaseSalary: decimal.NewFromInt(15000),
			},
			achievements: map[bonus.KPIType]string{
				bonus.KPIBalancedScorecard: "150",
				bonus.KPIManagerial:        "140",
				bonus.KPIOperational:       "180",
				bonus.KPISpecial:           "200",
			},
		},
		{
			employee: roster.Employee{
				ID:         "emp-gabi",
				Name:       "Gabriela Nunes",
				Role:       bonus.RoleTeam,
				BaseSalary: decimal.NewFromInt(7000),
			},
			achievements: map[bonus.KPIType]string{
				bonus.KPIBalancedScorecard: "130",
				bonus.KPIManagerial:        "125",
				bonus.KPIOperational:       "121",
				bonus.KPISpecial:           "151",
			},
		},
	})
}
