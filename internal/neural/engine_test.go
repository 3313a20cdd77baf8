package neural

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"brick-finder/internal/detect"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func emptyMat() gocv.Mat {
	return gocv.Mat{}
}

func TestLoadMissingModelEntersError(t *testing.T) {
	e := NewEngine(detect.DefaultParams(), false)
	missing := filepath.Join(t.TempDir(), "no-such-model.onnx")

	err := e.Load(missing)
	require.Error(t, err)

	state, msg := e.State()
	require.Equal(t, StateError, state)
	require.NotEmpty(t, msg)
	require.Contains(t, msg, missing)

	// The engine never reports ready after a failed load.
	require.False(t, e.Lifecycle().IsReady())
	require.Error(t, e.Lifecycle().Enable())
}

func TestLoadAsyncMissingModel(t *testing.T) {
	e := NewEngine(detect.DefaultParams(), false)
	missing := filepath.Join(t.TempDir(), "no-such-model.onnx")

	result := <-LoadAsync(e, missing)
	require.Error(t, result.Err)
	require.True(t, result.Elapsed >= 0)

	state, _ := e.State()
	require.Equal(t, StateError, state)
}

func TestInferWithoutModel(t *testing.T) {
	e := NewEngine(detect.DefaultParams(), false)
	require.Nil(t, e.LastDetections())

	// No model loaded: inference degrades to nothing.
	results := e.Detect(emptyMat())
	require.Empty(t, results)
}

func TestSetConfidenceThresholdClamps(t *testing.T) {
	e := NewEngine(detect.DefaultParams(), false)

	e.SetConfidenceThreshold(-1)
	e.mu.Lock()
	require.Zero(t, e.threshold)
	e.mu.Unlock()

	e.SetConfidenceThreshold(2)
	e.mu.Lock()
	require.InDelta(t, 1.0, e.threshold, 1e-9)
	e.mu.Unlock()
}

func TestSetAllowList(t *testing.T) {
	e := NewEngine(detect.DefaultParams(), false)

	e.SetAllowList([]string{"Red", ""})
	e.mu.Lock()
	require.Len(t, e.allow, 1)
	e.mu.Unlock()

	// Clearing restores accept-all.
	e.SetAllowList(nil)
	e.mu.Lock()
	require.Nil(t, e.allow)
	e.mu.Unlock()
}

func TestSetClassNames(t *testing.T) {
	e := NewEngine(detect.DefaultParams(), false)
	e.SetClassNames([]string{"a", "b"})
	e.mu.Lock()
	require.Equal(t, []string{"a", "b"}, e.classNames)
	e.mu.Unlock()
}

func TestLoadClassNamesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	writeFile(t, path, "2x4 Brick\n\n  Plate  \n")

	e := NewEngine(detect.DefaultParams(), false)
	require.NoError(t, e.LoadClassNames(path))

	e.mu.Lock()
	require.Equal(t, []string{"2x4 Brick", "Plate"}, e.classNames)
	e.mu.Unlock()

	require.Error(t, e.LoadClassNames(filepath.Join(t.TempDir(), "missing.txt")))
}
