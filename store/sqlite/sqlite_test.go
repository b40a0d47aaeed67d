package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bonus-engine/bonus"
	"github.com/warp/bonus-engine/roster"
	"github.com/warp/bonus-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEmployee_SaveGetList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	maria := roster.Employee{ID: "emp-1", Name: "Maria", Role: bonus.RoleManager, BaseSalary: d("8500.00")}
	bob := roster.Employee{ID: "emp-2", Name: "Bob", Role: bonus.RoleTeam, BaseSalary: d("4100.50")}

	require.NoError(t, store.SaveEmployee(ctx, maria))
	require.NoError(t, store.SaveEmployee(ctx, bob))

	got, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Maria", got.Name)
	assert.Equal(t, bonus.RoleManager, got.Role)
	assert.True(t, got.BaseSalary.Equal(d("8500.00")), "salary must round-trip bit-exact")

	list, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bob", list[0].Name, "list is ordered by name")
}

func TestEmployee_GetMissing(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetEmployee(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEmployee_SaveUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := roster.Employee{ID: "emp-1", Name: "Maria", Role: bonus.RoleTeam, BaseSalary: d("5000")}
	require.NoError(t, store.SaveEmployee(ctx, emp))

	emp.BaseSalary = d("5500")
	emp.Role = bonus.RoleManager
	require.NoError(t, store.SaveEmployee(ctx, emp))

	got, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.True(t, got.BaseSalary.Equal(d("5500")))
	assert.Equal(t, bonus.RoleManager, got.Role)
}

func TestEmployee_SaveRejectsInvalid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.SaveEmployee(ctx, roster.Employee{ID: "x", Name: "", Role: bonus.RoleTeam, BaseSalary: d("1")})
	assert.ErrorIs(t, err, roster.ErrEmptyName)

	err = store.SaveEmployee(ctx, roster.Employee{ID: "x", Name: "A", Role: "astronaut", BaseSalary: d("1")})
	assert.ErrorIs(t, err, roster.ErrUnknownRole)

	err = store.SaveEmployee(ctx, roster.Employee{ID: "x", Name: "A", Role: bonus.RoleTeam, BaseSalary: d("-1")})
	assert.ErrorIs(t, err, roster.ErrNegativeSalary)
}

func TestEmployee_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := roster.Employee{ID: "emp-1", Name: "Maria", Role: bonus.RoleTeam, BaseSalary: d("5000")}
	require.NoError(t, store.SaveEmployee(ctx, emp))
	require.NoError(t, store.SetAchievement(ctx, "emp-1", bonus.KPIOperational, d("95")))

	require.NoError(t, store.DeleteEmployee(ctx, "emp-1"))

	got, err := store.GetEmployee(ctx, "emp-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Cascade removed the measurements too.
	perf, err := store.GetPerformance(ctx, "emp-1")
	require.NoError(t, err)
	assert.Empty(t, perf)

	assert.ErrorIs(t, store.DeleteEmployee(ctx, "emp-1"), sql.ErrNoRows)
}

func TestAchievements_SetGetClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := roster.Employee{ID: "emp-1", Name: "Maria", Role: bonus.RoleTeam, BaseSalary: d("5000")}
	require.NoError(t, store.SaveEmployee(ctx, emp))

	require.NoError(t, store.SetAchievement(ctx, "emp-1", bonus.KPIBalancedScorecard, d("102.5")))
	require.NoError(t, store.SetAchievement(ctx, "emp-1", bonus.KPISpecial, d("130")))
	// Overwrite.
	require.NoError(t, store.SetAchievement(ctx, "emp-1", bonus.KPISpecial, d("135")))

	perf, err := store.GetPerformance(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, perf, 2)
	assert.True(t, perf[bonus.KPIBalancedScorecard].Equal(d("102.5")))
	assert.True(t, perf[bonus.KPISpecial].Equal(d("135")))

	require.NoError(t, store.ClearAchievement(ctx, "emp-1", bonus.KPISpecial))
	perf, err = store.GetPerformance(ctx, "emp-1")
	require.NoError(t, err)
	_, ok := perf[bonus.KPISpecial]
	assert.False(t, ok, "cleared KPI is unmeasured again")
}

func TestListPerformances_GroupsByEmployee(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, emp := range []roster.Employee{
		{ID: "emp-1", Name: "Maria", Role: bonus.RoleManager, BaseSalary: d("8000")},
		{ID: "emp-2", Name: "Bob", Role: bonus.RoleTeam, BaseSalary: d("4000")},
	} {
		require.NoError(t, store.SaveEmployee(ctx, emp))
	}

	require.NoError(t, store.SetAchievement(ctx, "emp-1", bonus.KPIManagerial, d("101")))
	require.NoError(t, store.SetAchievement(ctx, "emp-2", bonus.KPIOperational, d("88")))

	all, err := store.ListPerformances(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all["emp-1"][bonus.KPIManagerial].Equal(d("101")))
	assert.True(t, all["emp-2"][bonus.KPIOperational].Equal(d("88")))
}

func TestReset_WipesEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	emp := roster.Employee{ID: "emp-1", Name: "Maria", Role: bonus.RoleTeam, BaseSalary: d("5000")}
	require.NoError(t, store.SaveEmployee(ctx, emp))
	require.NoError(t, store.SetAchievement(ctx, "emp-1", bonus.KPIOperational, d("95")))

	require.NoError(t, store.Reset(ctx))

	list, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	all, err := store.ListPerformances(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
