package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/evalledger/internal/history"
)

const soStudy = `
package study

name: "svm"
space: {
	lr: {type: "float", lower: 0.0001, upper: 1, log: true}
	kernel: {type: "categorical", choices: ["rbf", "poly"]}
}
`

const moStudy = `
package study

name: "svm-mo"
objectives: ["error", "latency"]
reference_point: [1, 100]
space: {
	lr: {type: "float", lower: 0.0001, upper: 1, log: true}
	kernel: {type: "categorical", choices: ["rbf", "poly"]}
}
`

// writeStudy writes src as study.cue in a fresh directory.
func writeStudy(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "study.cue"), []byte(src), 0644))
	return dir
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// configs are the three configurations every snapshot below evaluates.
var configs = []map[string]any{
	{"lr": 0.5, "kernel": "rbf"},
	{"lr": 0.25, "kernel": "poly"},
	{"lr": 0.125, "kernel": "rbf"},
}

// writeSOSnapshot saves costs 0.5, 0.25, 0.25 under task svm-1, so two
// configurations tie at the incumbent value.
func writeSOSnapshot(t *testing.T, studyDir string) string {
	t.Helper()
	_, sp, err := loadSpace(studyDir)
	require.NoError(t, err)

	c := history.NewContainer("svm-1", history.WithLogger(discard()))
	for i, cost := range []float64{0.5, 0.25, 0.25} {
		cfg, err := sp.FromDictionary(configs[i])
		require.NoError(t, err)
		require.True(t, c.Add(cfg, history.Cost(cost)))
	}

	path := filepath.Join(t.TempDir(), history.DefaultSnapshotFile)
	require.NoError(t, c.SaveJSON(path))
	return path
}

// writeMOSnapshot saves (0.5, 50), (0.25, 75) and the dominated (0.75, 90).
// Against reference point (1, 100) the front covers 31.25.
func writeMOSnapshot(t *testing.T, studyDir string) string {
	t.Helper()
	_, sp, err := loadSpace(studyDir)
	require.NoError(t, err)

	c := history.NewMOContainer("", history.WithLogger(discard()))
	for i, objs := range [][]float64{{0.5, 50}, {0.25, 75}, {0.75, 90}} {
		cfg, err := sp.FromDictionary(configs[i])
		require.NoError(t, err)
		accepted, err := c.Add(cfg, objs)
		require.NoError(t, err)
		require.True(t, accepted)
	}

	path := filepath.Join(t.TempDir(), history.DefaultSnapshotFile)
	require.NoError(t, c.SaveJSON(path))
	return path
}

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// decodeData unmarshals the data of a JSON CLI response into v and
// returns the response status.
func decodeData(t *testing.T, output string, v any) string {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp), output)
	if v != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, v))
	}
	return resp.Status
}
