package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "adtape "+version+"\n", out)
}

func TestDemo(t *testing.T) {
	t.Setenv("ADTAPE_WORKERS", "2")
	out, err := execute(t, "demo", "--points", "3", "--metrics")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.True(t, strings.HasPrefix(lines[0], "recorded:"))
	assert.True(t, strings.HasPrefix(lines[1], "optimized:"))
	// x = (-1, 1): y = 4 + 0 + (-1) + 4, dy = (-4 + 0 + 1 - 4, 0).
	assert.Contains(t, lines[2], "y= 7.000000")
	assert.Contains(t, lines[2], "dy=(-7.000000,  0.000000)")
	assert.Contains(t, out, "adtape_tapes_recorded_total")
}

func TestDemo_BadPoints(t *testing.T) {
	_, err := execute(t, "demo", "--points", "0")
	assert.Error(t, err)
}
