package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihai-snyk/map-elites/apis/config/v1alpha1"
)

func TestSphereDemo(t *testing.T) {
	var buf bytes.Buffer
	sphereDemo(&buf, 3)
	out := buf.String()
	assert.Contains(t, out, "Sphere of input[0]: 5")
	assert.Contains(t, out, "-> Sphere of row 1: 55")
	assert.Contains(t, out, "In batch: [5 55]")
	assert.Contains(t, out, "With random inputs:")

	var again bytes.Buffer
	sphereDemo(&again, 3)
	assert.Equal(t, out, again.String())
}

func TestRunThenPlotCommands(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "--itrs", "10", "--batch-size", "10", "--dim", "3"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "10 iterations, 100 evaluations")

	out.Reset()
	rootCmd.SetArgs([]string{"plot"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.True(t, strings.HasPrefix(out.String(), "Inserted "))

	info, err := os.Stat(filepath.Join(dir, "archive.png"))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestApplyRunFlagsOverridesConfig(t *testing.T) {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.Uint64Var(&runFlags.seed, "seed", 42, "")
	fs.IntVar(&runFlags.itrs, "itrs", 1000, "")
	require.NoError(t, fs.Parse([]string{"--itrs", "3"}))

	runFlags.config = "config.yaml"
	t.Cleanup(func() { runFlags.config = "" })

	seed := uint64(9)
	args := &v1alpha1.MapElitesArgs{Seed: &seed}
	applyRunFlags(fs, args)
	assert.Equal(t, uint64(9), *args.Seed)
	assert.Equal(t, 3, *args.Iterations)
	assert.Nil(t, args.BatchSize)
}
