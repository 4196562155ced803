package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Plant3D/internal/config"
)

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	cad := filepath.Join(dir, "freecadcmd")
	require.NoError(t, os.WriteFile(cad, []byte("#!/bin/sh\n"), 0o755))

	caps := Detect(config.ProgramsConfig{
		CADPath:        cad,
		GameEnginePath: filepath.Join(dir, "missing", "godot"),
	})
	assert.True(t, caps.CAD.Available)
	assert.Empty(t, caps.CAD.Reason)
	assert.False(t, caps.GameEngine.Available)
	assert.Equal(t, "not found", caps.GameEngine.Reason)
}

func TestDetectUnconfiguredAndDirectory(t *testing.T) {
	caps := Detect(config.ProgramsConfig{GameEnginePath: t.TempDir()})
	assert.Equal(t, Program{Reason: "not configured"}, caps.CAD)
	assert.False(t, caps.GameEngine.Available)
	assert.Equal(t, "is a directory", caps.GameEngine.Reason)
}
