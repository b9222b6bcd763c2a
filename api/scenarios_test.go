/*
scenarios_test.go - Tests for the demo scenarios

PURPOSE:
	Each scenario must leave the ledger in the state its description
	promises, since demos and manual testing start from it.
*/
package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/edutime/report"
)

func TestScenario_StaffRoom(t *testing.T) {
	// GIVEN: An empty ledger
	// WHEN: Loading staff-room
	// THEN: Four unbound staff with the default balances exist

	f := newFixture(t)

	rec := f.do("POST", "/api/scenarios/load", "", LoadScenarioRequest{ScenarioID: "staff-room"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	users := decodeBody[[]UserDTO](t, f.do("GET", "/api/users", f.admin(), nil))
	require.Len(t, users, 4)
	for _, u := range users {
		assert.False(t, u.DeviceBound, u.ID)
	}

	balances := decodeBody[BalancesDTO](t, f.do("GET", "/api/users/3/balances", f.admin(), nil))
	assert.Equal(t, map[string]float64{
		"Annual Leave":     22,
		"Medical Leave":    12,
		"Casual Leave":     8,
		"Sabbatical":       1,
		"Professional Dev": 5,
		"Duty Leave":       10,
	}, balances.Balances)

	current := decodeBody[ScenarioDTO](t, f.do("GET", "/api/scenarios/current", "", nil))
	assert.Equal(t, "staff-room", current.ID)
}

func TestScenario_BusyMorning(t *testing.T) {
	// GIVEN: An empty ledger
	// WHEN: Loading busy-morning
	// THEN: The dashboard shows three arrivals, one late, one on leave

	f := newFixture(t)

	rec := f.do("POST", "/api/scenarios/load", "", LoadScenarioRequest{ScenarioID: "busy-morning"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do("GET", "/api/stats", f.admin(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decodeBody[report.Dashboard](t, rec)
	assert.Equal(t, report.Today{Present: 3, Late: 1, OnLeave: 1, Total: 4, AttendanceRate: 75}, d.Today)
	require.Len(t, d.Trend, report.TrendDays)
	assert.Equal(t, 1, d.Trend[5].Present, "yesterday")
	assert.ElementsMatch(t, []report.ReasonCount{{Name: "Casual Leave", Value: 1}, {Name: "Medical Leave", Value: 1}}, d.AbsenceReasons)

	pending := decodeBody[[]LeaveRequestDTO](t, f.do("GET", "/api/leave-requests?status=pending", f.admin(), nil))
	require.Len(t, pending, 1)
	assert.Equal(t, "Ms. Sarah Lee", pending[0].UserName)

	balances := decodeBody[BalancesDTO](t, f.do("GET", "/api/users/47/balances", f.admin(), nil))
	assert.Equal(t, 10.0, balances.Balances["Medical Leave"])
}

func TestScenario_ReloadResets(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.do("POST", "/api/scenarios/load", "", LoadScenarioRequest{ScenarioID: "busy-morning"}).Code)
	require.Equal(t, http.StatusOK, f.do("POST", "/api/scenarios/load", "", LoadScenarioRequest{ScenarioID: "staff-room"}).Code)

	all := decodeBody[[]LeaveRequestDTO](t, f.do("GET", "/api/leave-requests", f.admin(), nil))
	assert.Empty(t, all)

	require.Equal(t, http.StatusOK, f.do("POST", "/api/scenarios/reset", "", nil).Code)
	assert.Empty(t, decodeBody[[]UserDTO](t, f.do("GET", "/api/users", f.admin(), nil)))
	assert.Equal(t, "null\n", f.do("GET", "/api/scenarios/current", "", nil).Body.String())
}

func TestScenario_Unknown(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do("POST", "/api/scenarios/load", "", LoadScenarioRequest{ScenarioID: "new-employee"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do("POST", "/api/scenarios/load", "", LoadScenarioRequest{}).Code)

	list := decodeBody[[]ScenarioDTO](t, f.do("GET", "/api/scenarios", "", nil))
	assert.Len(t, list, 2)
}

func TestRouter_DevRoutesDisabled(t *testing.T) {
	f := newFixture(t)
	f.router = NewRouter(f.h, RouterOptions{})

	rec := f.do("POST", "/api/scenarios/load", "", LoadScenarioRequest{ScenarioID: "staff-room"})
	assert.Contains(t, []int{http.StatusNotFound, http.StatusMethodNotAllowed}, rec.Code)
}
