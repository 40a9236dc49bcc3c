package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksim/internal/sched"
)

const sampleTasks = `[
	{"name": "A", "duration": 4, "priority": 2, "arrival": 0, "deadline": 15},
	{"name": "B", "duration": 3, "priority": 1, "arrival": 1, "deadline": 10},
	{"name": "C", "duration": 6, "priority": 3, "arrival": 2, "deadline": 20}
]`

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	ts := httptest.NewServer(New(sched.DefaultConfig(), logger, opts...))
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func decodeData(t *testing.T, env envelope, v any) {
	t.Helper()
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "ok", env.Status)
	assert.NotEmpty(t, env.RequestID)
}

func TestSimulateFIFO(t *testing.T) {
	ts := newTestServer(t)
	resp, env := post(t, ts, "/api/v1/simulations", `{"policy": "fifo", "tasks": `+sampleTasks+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var res sched.Result
	decodeData(t, env, &res)
	assert.True(t, strings.HasPrefix(res.RunID, "run_"))
	assert.Equal(t, []string{"A", "B", "C"}, res.Snapshot.CompletionSeq)
	assert.Equal(t, 7.0, res.Snapshot.AvgTurnaround)
	assert.InDelta(t, 0.3, res.Snapshot.TotalOverhead, 1e-9)
	assert.Empty(t, res.Events, "events only with trace")
}

func TestSimulateTraceAndOverrides(t *testing.T) {
	ts := newTestServer(t)
	body := `{"policy": "round-robin", "quantum": 4, "context_switch_cost": 0.5, "trace": true, "tasks": ` + sampleTasks + `}`
	resp, env := post(t, ts, "/api/v1/simulations", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	var res sched.Result
	decodeData(t, env, &res)
	assert.Equal(t, "rr(q=4)", res.Snapshot.Policy)
	assert.NotEmpty(t, res.Events)
	// A [0,4) B [4,7) C [7,11) C [11,13)
	assert.InDelta(t, 2.0, res.Snapshot.TotalOverhead, 1e-9)
}

func TestSimulateRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t, WithMaxWork(10))

	cases := map[string]string{
		"invalid quantum": `{"policy": "rr", "quantum": 0, "tasks": [{"name": "a", "duration": 1}]}`,
		"unknown policy":  `{"policy": "lottery", "tasks": []}`,
		"unknown field":   `{"policy": "fifo", "tasks": [], "speed": 3}`,
		"work cap":        `{"policy": "fifo", "tasks": ` + sampleTasks + `}`,
		"duplicate task":  `{"policy": "fifo", "tasks": [{"name": "a", "duration": 1}, {"name": "a", "duration": 1}]}`,
		"negative cost":   `{"policy": "fifo", "context_switch_cost": -1, "tasks": [{"name": "a", "duration": 1}]}`,
		"malformed":       `{"policy": `,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp, env := post(t, ts, "/api/v1/simulations", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "error", env.Status)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestSimulateLimitsTaskCount(t *testing.T) {
	ts := newTestServer(t, WithMaxTasks(2))
	resp, env := post(t, ts, "/api/v1/simulations", `{"policy": "fifo", "tasks": `+sampleTasks+`}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Error, "3 tasks")
}

func TestHeuristicScoringBudget(t *testing.T) {
	ts := newTestServer(t, WithMaxScores(20))

	// 3 tasks, run to completion: 3 * 3 calls
	resp, env := post(t, ts, "/api/v1/simulations", `{"policy": "heuristic", "tasks": `+sampleTasks+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	// quantum 1 over 13 units of work: 3 * (3 + 13) calls
	body := `{"policy": "heuristic", "heuristic": {"quantum": 1}, "tasks": ` + sampleTasks + `}`
	resp, env = post(t, ts, "/api/v1/simulations", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Error, "oracle calls")

	// the cap does not apply to other policies
	body = `{"policy": "rr", "quantum": 1, "tasks": ` + sampleTasks + `}`
	resp, env = post(t, ts, "/api/v1/simulations", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	// compare always runs the heuristic
	resp, _ = post(t, ts, "/api/v1/comparisons", `{"heuristic": {"quantum": 1}, "tasks": `+sampleTasks+`}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSimulateThrowingOracle(t *testing.T) {
	ts := newTestServer(t)
	body := `{"policy": "heuristic", "heuristic": {"script": "function score(f) { throw 1; }"}, "tasks": ` + sampleTasks + `}`
	resp, env := post(t, ts, "/api/v1/simulations", body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Error, "oracle")
}

func TestSimulateLoopingOracle(t *testing.T) {
	script := `"heuristic": {"script": "function score(f) { while (true) {} }"}`

	ts := newTestServer(t)
	resp, env := post(t, ts, "/api/v1/simulations", `{"policy": "heuristic", `+script+`, "tasks": `+sampleTasks+`}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Error, "timed out")

	// the request deadline interrupts the script before its own timeout
	ts = newTestServer(t, WithRunTimeout(20*time.Millisecond))
	resp, _ = post(t, ts, "/api/v1/simulations", `{"policy": "heuristic", `+script+`, "tasks": `+sampleTasks+`}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSimulateBrokenOracle(t *testing.T) {
	ts := newTestServer(t)
	body := `{"policy": "heuristic", "heuristic": {"script": "function rank(f) { return 1; }"}, "tasks": []}`
	resp, env := post(t, ts, "/api/v1/simulations", body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Error, "score")
}

func TestListPolicies(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/v1/policies")
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	var infos []policyInfo
	decodeData(t, env, &infos)

	require.Len(t, infos, len(sched.Kinds()))
	assert.Equal(t, "fifo", infos[0].Name)
	assert.False(t, infos[0].Preemptive)
	for _, info := range infos {
		if info.Name == "srtf" {
			assert.Equal(t, "per_switch", info.Overhead)
			assert.True(t, info.Preemptive)
		}
	}
}

func TestCompareAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	ts := newTestServer(t, WithRegistry(reg))

	resp, env := post(t, ts, "/api/v1/comparisons", `{"tasks": `+sampleTasks+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Error)

	var snaps []sched.Snapshot
	decodeData(t, env, &snaps)
	require.Len(t, snaps, len(sched.Kinds()))
	assert.Equal(t, "fifo", snaps[0].Policy)
	assert.Equal(t, "srtf", snaps[6].Policy)

	mresp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer mresp.Body.Close()
	body, err := io.ReadAll(mresp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `tasksim_simulations_total{policy="edf"} 1`)
	assert.Contains(t, string(body), "tasksim_average_turnaround")
}
