package csvagent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/csvagent/agent"
	"github.com/hupe1980/csvagent/model"
)

func TestNewRegistersToolkit(t *testing.T) {
	a, err := New(model.NewMockGenerator())
	require.NoError(t, err)

	for _, name := range []string{"list_csv_files", "clean_csv_file", "consolidate_csv_files", "terminate"} {
		_, err := a.Registry().Get(name)
		assert.NoError(t, err, name)
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.csv"), []byte("a,b\n1,2\n"), 0o644))

	gen := model.NewMockGenerator()
	gen.AddToolCallResponse("list_csv_files", map[string]any{"dir": dir})
	gen.AddToolCallResponse("terminate", map[string]any{"message": "One file found."})

	a, err := New(gen)
	require.NoError(t, err)

	outcome, err := a.Run(context.Background(), "How many CSV files are there?")
	require.NoError(t, err)
	assert.Equal(t, agent.StatusCompleted, outcome.Status)
	assert.Contains(t, outcome.FinalOutput, "One file found.")
	assert.Equal(t, 2, outcome.Iterations)
}

func TestMemoryPersistsAcrossRuns(t *testing.T) {
	gen := model.NewMockGenerator()
	gen.AddToolCallResponse("say", map[string]any{"message": "hello"})
	gen.AddTextResponse("still here")

	a, err := New(gen, func(o *Options) { o.MaxIterations = 1 })
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "first turn")
	require.NoError(t, err)

	before := a.Memory().Len()
	_, err = a.Run(context.Background(), "second turn")
	require.NoError(t, err)
	assert.Greater(t, a.Memory().Len(), before)

	// The second prompt carried the first turn's history.
	last := gen.Requests()[len(gen.Requests())-1]
	found := false
	for _, msg := range last.Messages {
		if msg.Content == "first turn" {
			found = true
		}
	}
	assert.True(t, found)
}
