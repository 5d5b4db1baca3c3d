package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/metrics"
)

const companies = `
companies:
  - company_id: lattice
    name: Lattice Compute
    sector: AI_Infra
    hype: {media_mentions: 85, social_growth: 80, vc_thesis_mentions: 90, conference_appearances: 70, search_trend: 75}
    build: {revenue_growth: 90, logo_count: 85, patent_velocity: 70, talent_density: 80, product_milestones: 85}
    executive_hires:
      - date: 2024-12-01T00:00:00Z
        role: CFO
  - company_id: qubit
    name: Qubit Works
    sector: Quantum
`

func testEnv(t *testing.T) config.Env {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "companies.yaml"), []byte(companies), 0644))
	return config.Env{DataDir: dir, LogLevel: "error", Workers: 2}
}

func execute(t *testing.T, env config.Env, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(env)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	env := testEnv(t)
	outDir := filepath.Join(t.TempDir(), "reports")

	out, err := execute(t, env, "run", "--as-of", "2025-01-15", "--out", outDir, "--format", "md", "--top", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "as of 2025-01-15")
	assert.Contains(t, out, "Lattice Compute")
	assert.Contains(t, out, "Wrote "+filepath.Join(outDir, "report_20250115.md"))
	assert.FileExists(t, filepath.Join(outDir, "report_20250115.md"))
	assert.NoFileExists(t, filepath.Join(outDir, "report_20250115.json"))
}

func TestBuildStackRegistersClosers(t *testing.T) {
	env := testEnv(t)
	st, err := buildStack(context.Background(), env, datasetOptions{DataDir: env.DataDir, Workers: 1}, storageOptions{}, nil, metrics.NewRegistry())
	require.NoError(t, err)

	assert.Len(t, st.closers, 2, "store and cache are both closed")
	for _, closeFn := range st.closers {
		assert.NoError(t, closeFn())
	}
}

func TestRunCommandRejectsBadFlags(t *testing.T) {
	env := testEnv(t)

	_, err := execute(t, env, "run", "--as-of", "soon", "--out", "")
	assert.Error(t, err)

	_, err = execute(t, env, "run", "--format", "pdf", "--out", "")
	assert.Error(t, err)

	_, err = execute(t, env, "run", "--data", t.TempDir(), "--out", "")
	assert.Error(t, err)
}

func TestExplainCommand(t *testing.T) {
	env := testEnv(t)

	out, err := execute(t, env, "explain", "lattice", "--as-of", "2025-01-15")
	require.NoError(t, err)
	assert.Contains(t, out, "Lattice Compute (lattice)")
	assert.Contains(t, out, "CFO_HIRE")
	assert.Contains(t, out, "next: CFO_HIRE in ")

	_, err = execute(t, env, "explain", "missing", "--as-of", "2025-01-15")
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	env := testEnv(t)

	out, err := execute(t, env, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "built-in defaults")

	out, err = execute(t, env, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "hype_weights:")
	assert.Contains(t, out, "risk_limits:")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("composite_weights: {hype: 0.9, build: 0.9}\n"), 0644))
	_, err = execute(t, env, "config", "validate", bad)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestInvalidLogLevel(t *testing.T) {
	env := testEnv(t)
	_, err := execute(t, env, "--log-level", "loud", "config", "validate")
	assert.Error(t, err)
}
