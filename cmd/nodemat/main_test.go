package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "-q"))
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func TestVariantsCommand(t *testing.T) {
	out := execute(t, "variants")
	assert.Equal(t, []string{"gradient", "knight", "pulse", "rocks", "stones"}, strings.Fields(out))
}

func TestPresetsCommand(t *testing.T) {
	out := execute(t, "presets", "--variant", "gradient")
	assert.Contains(t, out, "moss")
	assert.Contains(t, out, "#4a4039")
	assert.Contains(t, out, "(default)")
}

const rocksOBJ = `o Target_Mesh_Plane
usemtl rock
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
o RockA
usemtl Rock
f 1 2 3
o Misc
usemtl unknown
f 1 2 3
`

func TestInspectCommand(t *testing.T) {
	file := filepath.Join(t.TempDir(), "rocks.obj")
	require.NoError(t, os.WriteFile(file, []byte(rocksOBJ), 0644))

	out := execute(t, "inspect", "--variant", "rocks", file)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"Target_Mesh_Plane", "1", "rock", "spiral", "target"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"RockA", "1", "Rock", "rock", "preset"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"Misc", "1", "unknown", "(unchanged)", "-"}, strings.Fields(lines[3]))
	assert.True(t, strings.HasPrefix(lines[4], "bounds"))
}

func TestUnknownVariant(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"presets", "--variant", "castle"})
	assert.Error(t, cmd.Execute())
}
