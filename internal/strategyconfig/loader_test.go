package strategyconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadListShape(t *testing.T) {
	path := writeConfig(t, "configs.json", `[
		{"class": "BBIKDJSelector", "alias": "pullback", "params": {"j_threshold": 1}},
		{"class": "PeakKDJSelector", "activate": false}
	]`)

	selectors, err := Load(path)
	require.NoError(t, err)
	require.Len(t, selectors, 2)

	assert.Equal(t, "BBIKDJSelector", selectors[0].Strategy)
	assert.Equal(t, "pullback", selectors[0].Label())
	assert.True(t, selectors[0].Active())
	assert.Equal(t, float64(1), selectors[0].Params["j_threshold"])

	assert.Equal(t, "PeakKDJSelector", selectors[1].Label())
	assert.False(t, selectors[1].Active())
}

func TestLoadWrappedShape(t *testing.T) {
	path := writeConfig(t, "configs.json", `{"selectors": [{"class": "BreakoutVolumeKDJSelector"}]}`)

	selectors, err := Load(path)
	require.NoError(t, err)
	require.Len(t, selectors, 1)
	assert.Equal(t, "BreakoutVolumeKDJSelector", selectors[0].Strategy)
}

func TestLoadSingleObjectShape(t *testing.T) {
	path := writeConfig(t, "configs.json", `{"class": "BBIShortLongSelector", "params": {"m": 3}}`)

	selectors, err := Load(path)
	require.NoError(t, err)
	require.Len(t, selectors, 1)
	assert.Equal(t, "BBIShortLongSelector", selectors[0].Strategy)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "configs.yaml", `
- class: BBIKDJSelector
  alias: pullback
  params:
    max_window: 60
- class: PeakKDJSelector
`)

	selectors, err := Load(path)
	require.NoError(t, err)
	require.Len(t, selectors, 2)
	assert.Equal(t, 60, selectors[0].Params["max_window"])
}

func TestLoadRejectsEmptyAndMalformed(t *testing.T) {
	_, err := Load(writeConfig(t, "empty.json", `[]`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "wrapped-empty.json", `{"selectors": []}`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "noclass.json", `[{"alias": "x"}]`))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestHashIsStable(t *testing.T) {
	selectors := []Selector{{Strategy: "BBIKDJSelector", Params: map[string]any{"m": 3.0}}}

	h1, err := Hash(selectors)
	require.NoError(t, err)
	h2, err := Hash(selectors)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}
