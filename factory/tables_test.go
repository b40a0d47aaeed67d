package factory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bonus-engine/bonus"
	"github.com/warp/bonus-engine/factory"
)

const minimalJSON = `{
  "tables": [
    {"kpi": "balanced_scorecard", "role": "team", "brackets": [{"attaining": 100, "base_percentage": 8}]},
    {"kpi": "balanced_scorecard", "role": "manager", "brackets": [{"attaining": 100, "base_percentage": 12}]},
    {"kpi": "managerial", "role": "team", "brackets": [{"attaining": "95", "base_percentage": "2.5"}]},
    {"kpi": "managerial", "role": "manager", "brackets": [{"attaining": 95, "base_percentage": 6}]},
    {"kpi": "operational", "role": "team", "brackets": [{"attaining": 90, "base_percentage": 5}]},
    {"kpi": "operational", "role": "manager", "brackets": [{"attaining": 90, "base_percentage": 6}]},
    {"kpi": "special", "role": "team", "brackets": [{"attaining": 110, "base_percentage": 6}]},
    {"kpi": "special", "role": "manager", "brackets": [{"attaining": 110, "base_percentage": 10}]}
  ]
}`

func TestParseTables_MinimalValidSet(t *testing.T) {
	ts, err := factory.ParseTables([]byte(minimalJSON), "test")
	require.NoError(t, err)

	brackets, err := ts.TableFor(bonus.KPIManagerial, bonus.RoleTeam)
	require.NoError(t, err)
	require.Len(t, brackets, 1)

	// Quoted and bare numbers both parse as exact decimals.
	assert.True(t, brackets[0].Attaining.Equal(decimal.RequireFromString("95")))
	assert.True(t, brackets[0].BasePercentage.Equal(decimal.RequireFromString("2.5")))
}

func TestParseTables_AccumulatesSchemaErrors(t *testing.T) {
	bad := `{
	  "tables": [
	    {"kpi": "velocity", "role": "team", "brackets": []},
	    {"kpi": "special", "role": "director", "brackets": []},
	    {"kpi": "special", "role": "team", "brackets": [{"attaining": "ten", "base_percentage": 1}]}
	  ]
	}`

	_, err := factory.ParseTables([]byte(bad), "test")
	require.Error(t, err)

	var vErrs factory.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	assert.Len(t, vErrs, 3, "all three schema problems should be reported at once")
}

func TestParseTables_DuplicatePair(t *testing.T) {
	dup := `{
	  "tables": [
	    {"kpi": "special", "role": "team", "brackets": [{"attaining": 100, "base_percentage": 4}]},
	    {"kpi": "special", "role": "team", "brackets": [{"attaining": 100, "base_percentage": 9}]}
	  ]
	}`

	_, err := factory.ParseTables([]byte(dup), "test")
	var vErrs factory.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	assert.Contains(t, vErrs.Error(), "already defined")
}

func TestParseTables_IncompleteCoverage_IsConfigurationError(t *testing.T) {
	partial := `{"tables": [{"kpi": "special", "role": "team", "brackets": [{"attaining": 100, "base_percentage": 4}]}]}`

	_, err := factory.ParseTables([]byte(partial), "test")
	require.Error(t, err)
	assert.True(t, bonus.IsConfigurationError(err))
	assert.ErrorIs(t, err, bonus.ErrTableNotFound)
}

func TestLoadTablesFile_YAML(t *testing.T) {
	content := `tables:
  - kpi: balanced_scorecard
    role: team
    brackets:
      - {attaining: 80, base_percentage: 2}
      - {attaining: 100, base_percentage: 8}
  - {kpi: balanced_scorecard, role: manager, brackets: [{attaining: 100, base_percentage: 12}]}
  - {kpi: managerial, role: team, brackets: [{attaining: 100, base_percentage: 5}]}
  - {kpi: managerial, role: manager, brackets: [{attaining: 100, base_percentage: 10}]}
  - {kpi: operational, role: team, brackets: [{attaining: 100, base_percentage: 8}]}
  - {kpi: operational, role: manager, brackets: [{attaining: 100, base_percentage: 9}]}
  - {kpi: special, role: team, brackets: [{attaining: 100, base_percentage: 4}]}
  - {kpi: special, role: manager, brackets: [{attaining: 100, base_percentage: 7}]}
`
	path := filepath.Join(t.TempDir(), "tables.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ts, err := factory.LoadTablesFile(path)
	require.NoError(t, err)

	engine, err := bonus.NewEngine(ts)
	require.NoError(t, err)

	pct, err := engine.ResolveBonusPercentage(bonus.KPIBalancedScorecard, decimal.NewFromInt(85), bonus.RoleTeam)
	require.NoError(t, err)
	assert.True(t, pct.Equal(decimal.NewFromInt(2)))
}

func TestLoadTablesFile_Missing(t *testing.T) {
	_, err := factory.LoadTablesFile(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestToJSON_RoundTrip(t *testing.T) {
	// Default tables rendered to the schema and parsed back must
	// produce an equivalent set.
	tj, err := factory.ToJSON(bonus.DefaultTables())
	require.NoError(t, err)
	require.Len(t, tj.Tables, 8)

	ts, err := factory.FromJSON(tj, "roundtrip")
	require.NoError(t, err)

	for _, kpi := range bonus.AllKPITypes() {
		for _, role := range bonus.AllRoles() {
			orig, err := bonus.DefaultTables().TableFor(kpi, role)
			require.NoError(t, err)
			got, err := ts.TableFor(kpi, role)
			require.NoError(t, err)
			require.Len(t, got, len(orig))
			for i := range orig {
				assert.True(t, got[i].Attaining.Equal(orig[i].Attaining))
				assert.True(t, got[i].BasePercentage.Equal(orig[i].BasePercentage))
			}
		}
	}
}
