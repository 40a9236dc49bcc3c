package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"tasksim/internal/runner"
	"tasksim/internal/sched"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

func respondOK(w http.ResponseWriter, r *http.Request, data any) {
	respondJSON(w, http.StatusOK, envelope{Status: "ok", RequestID: middleware.GetReqID(r.Context()), Data: data})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	respondJSON(w, status, envelope{Status: "error", RequestID: middleware.GetReqID(r.Context()), Error: err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

type healthResponse struct {
	Status    string `json:"status"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, healthResponse{
		Status:    "healthy",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	})
}

type policyInfo struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Preemptive bool   `json:"preemptive"`
	Overhead   string `json:"overhead"`
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	var out []policyInfo
	for _, k := range sched.Kinds() {
		info := policyInfo{Name: k.String(), Title: k.Title(), Overhead: "per_dispatch"}
		switch k {
		case sched.RoundRobin, sched.DynamicRoundRobin, sched.EDF, sched.SRTF, sched.Heuristic:
			info.Preemptive = true
		}
		if k == sched.SRTF {
			info.Overhead = "per_switch"
		}
		out = append(out, info)
	}
	respondOK(w, r, out)
}

// simulationRequest carries a workload plus any config field to override.
type simulationRequest struct {
	sched.Config
	Tasks []sched.TaskSpec `json:"tasks"`
	Trace bool             `json:"trace"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (simulationRequest, error) {
	req := simulationRequest{Config: s.defaults}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	if req.ContextSwitchCost < 0 {
		return req, fmt.Errorf("context_switch_cost must not be negative (got %g)", req.ContextSwitchCost)
	}
	if n := len(req.Tasks); n > s.maxTasks {
		return req, fmt.Errorf("%d tasks exceeds the limit of %d", n, s.maxTasks)
	}
	if work := totalWork(req.Tasks); work > s.maxWork {
		return req, fmt.Errorf("total task duration exceeds %d", s.maxWork)
	}
	return req, nil
}

func totalWork(tasks []sched.TaskSpec) int64 {
	var work int64
	for _, t := range tasks {
		if t.Duration > 0 {
			work += t.Duration
		}
	}
	return work
}

// checkScoring bounds the oracle calls of a heuristic run. Every dispatch
// scores every ready task, so the cost is at most tasks * dispatches.
func (s *Server) checkScoring(req simulationRequest) error {
	n := int64(len(req.Tasks))
	dispatches := n
	if q := req.Heuristic.Quantum; q > 0 {
		dispatches += totalWork(req.Tasks) / q
	}
	if calls := n * dispatches; calls > s.maxScores {
		return fmt.Errorf("heuristic run needs up to %d oracle calls, limit is %d", calls, s.maxScores)
	}
	return nil
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r)
	if err != nil {
		s.metrics.failures.Inc()
		respondError(w, r, http.StatusBadRequest, err)
		return
	}
	kind, err := sched.ParseKind(req.Policy)
	if err == nil && kind == sched.Heuristic {
		err = s.checkScoring(req)
	}
	if err != nil {
		s.metrics.failures.Inc()
		respondError(w, r, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.runTimeout)
	defer cancel()
	res, err := runner.RunKind(ctx, req.Config, kind, req.Tasks, s.logger)
	if err != nil {
		s.metrics.failures.Inc()
		respondError(w, r, statusFor(err), err)
		return
	}
	s.metrics.observe(kind, res.Snapshot)
	if !req.Trace {
		res.Events = nil
	}
	respondOK(w, r, res)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r)
	if err == nil {
		err = s.checkScoring(req)
	}
	if err != nil {
		s.metrics.failures.Inc()
		respondError(w, r, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.runTimeout)
	defer cancel()
	results, err := runner.Compare(ctx, req.Config, req.Tasks, s.logger)
	if err != nil {
		s.metrics.failures.Inc()
		respondError(w, r, statusFor(err), err)
		return
	}
	snaps := make([]sched.Snapshot, len(results))
	for i, res := range results {
		s.metrics.observe(sched.Kinds()[i], res.Snapshot)
		snaps[i] = res.Snapshot
	}
	respondOK(w, r, snaps)
}

// statusFor maps validation errors to 400, an exceeded run timeout to 503
// and oracle failures to 422.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, sched.ErrInvalidQuantum),
		errors.Is(err, sched.ErrInvalidTask),
		errors.Is(err, sched.ErrNoOracle),
		errors.Is(err, sched.ErrUnknownPolicy):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}
