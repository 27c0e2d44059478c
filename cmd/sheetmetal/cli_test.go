package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soypat/sheetmetal"
	"github.com/soypat/sheetmetal/internal/config"
	"github.com/soypat/sheetmetal/render"
)

// run runs the CLI with args and returns what was written to stdout and
// stderr.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newCLIApp(&stdout, &stderr)
	err := app.Run(append([]string{"sheetmetal"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestTypesCmd(t *testing.T) {
	out, _, err := run(t, "types")
	require.NoError(t, err)
	assert.Equal(t, []string{"L-Shape", "U-Shape", "Tub", "Hat", "Box"}, strings.Fields(out))
}

func TestFacesCmd(t *testing.T) {
	out, _, err := run(t, "faces", "--type", "l-shape", "--width", "20", "--length", "30", "--height", "10")
	require.NoError(t, err)
	var got facesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "L-Shape", got.Type)
	assert.Equal(t, 18.0, got.Width)
	assert.Equal(t, 8.0, got.Height)
	require.Len(t, got.Folds, 1)
	assert.Equal(t, foldOutput{Faces: []int{4}, Thickness: 1, Length: 8, Radius: 1, AutoMiter: true}, got.Folds[0])
	assert.Equal(t, 12, got.Faces)
}

func TestFacesCmdFlange(t *testing.T) {
	out, _, err := run(t, "faces", "--type", "Hat", "--fill-gaps=false")
	require.NoError(t, err)
	var got facesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Folds, 2)
	assert.True(t, got.Folds[1].Flipped)
	assert.False(t, got.Folds[0].AutoMiter)
	assert.Len(t, got.Folds[1].Faces, 4)
}

func TestFacesCmdConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: u-shape\nheight: 30\nradius: 0\n"), 0600))
	out, _, err := run(t, "faces", "-c", path, "--height", "12")
	require.NoError(t, err)
	var got facesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "U-Shape", got.Type)
	// Flags override the file.
	assert.Equal(t, 11.0, got.Height)
	assert.Equal(t, 0.0, got.Folds[0].Radius)
}

func TestVerboseLogsClamping(t *testing.T) {
	_, stderr, err := run(t, "--verbose", "faces", "--type", "box", "--width", "1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "dimensions clamped to thickness")
	assert.Contains(t, stderr, "folding flange")

	_, stderr, err = run(t, "faces", "--type", "box", "--width", "1")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "dimensions clamped to thickness")
	assert.Contains(t, stderr, "shape built")
}

func TestBuildCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tub.stl")
	_, _, err := run(t, "build", "--type", "tub", "--mesh-cells", "30", "-o", path)
	require.NoError(t, err)
	fp, err := os.Open(path)
	require.NoError(t, err)
	defer fp.Close()
	stl, err := render.ReadSTL(fp)
	if err != nil {
		require.ErrorIs(t, err, render.ErrNormalMismatch)
	}
	assert.NotEmpty(t, stl.Triangles)
	assert.True(t, strings.HasPrefix(stl.Header, "sheetmetal Tub t=1 r=1 w="), "header %q", stl.Header)
}

func TestConfigCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: u-shape\nheight: 30\nradius: 0\n"), 0600))
	out, _, err := run(t, "config", "-c", path, "--height", "12", "--mesh-cells", "50")
	require.NoError(t, err)
	got, err := config.Parse([]byte(out))
	require.NoError(t, err)
	want := config.DefaultConfig()
	want.Type = sheetmetal.UShape
	want.Radius = 0
	want.Height = 12
	want.MeshCells = 50
	assert.Equal(t, want, got)

	_, _, err = run(t, "config", "--mesh-cells", "1")
	assert.Error(t, err)
}

func TestPreviewCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "box.png")
	_, _, err := run(t, "preview", "--mesh-cells", "20", "--image-width", "64", "--image-height", "48", "-o", path)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestCmdErrors(t *testing.T) {
	for _, test := range []struct {
		name string
		args []string
		msg  string
	}{
		{"bad type", []string{"faces", "--type", "Z-Shape"}, "unknown shape type"},
		{"bad thickness", []string{"faces", "--thickness", "-1"}, "thickness"},
		{"bad mesh cells", []string{"build", "--mesh-cells", "1"}, "mesh_cells"},
		{"missing config", []string{"faces", "-c", filepath.Join(t.TempDir(), "none.yaml")}, "none.yaml"},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := run(t, test.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.msg)
		})
	}
}
