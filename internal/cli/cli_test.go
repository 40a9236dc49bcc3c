package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksim/internal/job"
	"tasksim/internal/sched"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	base := []string{
		"--config", filepath.Join(dir, "config.yml"),
		"--env-file", filepath.Join(dir, ".env"),
		"--log-level", "error",
	}

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, base...))
	err := root.Execute()
	return out.String(), err
}

func TestPoliciesCommand(t *testing.T) {
	out, err := execute(t, "policies")
	require.NoError(t, err)
	for _, k := range sched.Kinds() {
		assert.Contains(t, out, k.String())
	}
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "run", "--policy", "sjf")
	require.NoError(t, err)
	assert.Contains(t, out, "Policy: sjf")
	assert.Contains(t, out, "Total overhead:")
}

func TestRunCommandJSON(t *testing.T) {
	out, err := execute(t, "run", "-p", "rr", "-q", "3", "--json")
	require.NoError(t, err)

	var res sched.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "rr(q=3)", res.Snapshot.Policy)
	assert.Len(t, res.Snapshot.Tasks, 3)
}

func TestRunCommandExports(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "results.csv")
	tracePath := filepath.Join(dir, "trace.csv")

	_, err := execute(t, "run", "-p", "fifo", "--csv", csvPath, "--trace", tracePath)
	require.NoError(t, err)

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "A,0,4,4,2,15,no")

	data, err = os.ReadFile(tracePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tick,event,task,ran,remaining")
}

func TestRunCommandRejectsZeroQuantum(t *testing.T) {
	_, err := execute(t, "run", "-p", "rr", "--quantum", "0")
	require.Error(t, err)
	assert.ErrorIs(t, err, sched.ErrInvalidQuantum)
}

func TestRunCommandWorkloadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yml")
	data, err := job.Marshal([]sched.TaskSpec{{Name: "solo", Duration: 5, Arrival: 2}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err := execute(t, "run", "-p", "edf", "-t", path, "--json")
	require.NoError(t, err)

	var res sched.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Snapshot.Tasks[0].Completion)
	assert.Equal(t, int64(7), *res.Snapshot.Tasks[0].Completion)
}

func TestCompareCommand(t *testing.T) {
	out, err := execute(t, "compare", "--generate", "6", "--json")
	require.NoError(t, err)

	var snaps []sched.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snaps))
	assert.Len(t, snaps, len(sched.Kinds()))
}

func TestGenerateCommand(t *testing.T) {
	out, err := execute(t, "generate", "-n", "3", "--seed", "5")
	require.NoError(t, err)

	specs, err := job.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, job.Generate(3, 5), specs)

	_, err = execute(t, "generate", "-n", "0")
	assert.Error(t, err)
}
