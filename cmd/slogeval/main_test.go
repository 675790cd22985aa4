package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

const studyYAML = `coordinator:
  qualTargetCount: 1
  seedSalt: cli-test
  readCacheTtl: 0s
  schema:
    symptoms: [Edema, Effusion]
    scoreValues: ["0", "1"]
    qualFields: [confidence]
store:
  backend: file
  dir: %DIR%/progress
items:
  - path: %DIR%/a.csv
    provenance: source_a
  - path: %DIR%/b.csv
    provenance: source_b
`

func writeStudy(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"a.csv": "item_id,text\nr1,alpha one\nr2,alpha two\nr3,alpha three\n",
		"b.csv": "report_id,report\nr1,beta one\nr2,beta two\nr4,beta four\n",
		"study.yaml": regexp.MustCompile(`%DIR%`).ReplaceAllLiteralString(studyYAML, dir),
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}

	return filepath.Join(dir, "study.yaml")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)

	return stdout.String(), err
}

var itemLine = regexp.MustCompile(`phase: (\w+)\s+item: (\S+)`)

func TestCLI_NextSubmitProgress(t *testing.T) {
	cfg := writeStudy(t)

	out, err := execute(t, "--config", cfg, "progress", "--user", "ann")
	require.NoError(t, err)
	require.Contains(t, out, "state: QuantInProgress")
	require.Contains(t, out, "quant: 0/")

	out, err = execute(t, "--config", cfg, "next", "--user", "ann")
	require.NoError(t, err)
	m := itemLine.FindStringSubmatch(out)
	require.Len(t, m, 3, out)
	require.Equal(t, "quant", m[1])
	require.Contains(t, out, "Edema [0|1]")
	first := m[2]

	out, err = execute(t, "--config", cfg, "submit", "--user", "ann", "--phase", "quant",
		"--item", first, "--field", "Edema=1", "--field", "Effusion=0")
	require.NoError(t, err)
	require.Contains(t, out, "recorded")

	// A second process sees the persisted completion.
	out, err = execute(t, "--config", cfg, "submit", "--user", "ann", "--phase", "quant",
		"--item", first, "--field", "Edema=0", "--field", "Effusion=0")
	require.NoError(t, err)
	require.Contains(t, out, "duplicate")

	out, err = execute(t, "--config", cfg, "progress", "--user", "ann")
	require.NoError(t, err)
	require.Contains(t, out, "quant: 1/")

	out, err = execute(t, "--config", cfg, "next", "--user", "ann")
	require.NoError(t, err)
	m = itemLine.FindStringSubmatch(out)
	require.Len(t, m, 3, out)
	require.NotEqual(t, first, m[2])
}

func TestCLI_Partition(t *testing.T) {
	cfg := writeStudy(t)

	out1, err := execute(t, "--config", cfg, "partition", "--user", "ann")
	require.NoError(t, err)
	require.Contains(t, out1, "quant (")
	require.Contains(t, out1, "qual (2)")

	out2, err := execute(t, "--config", cfg, "partition", "--user", "ann")
	require.NoError(t, err)
	require.Equal(t, out1, out2)
}

func TestCLI_Errors(t *testing.T) {
	cfg := writeStudy(t)

	t.Run("missing config", func(t *testing.T) {
		_, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "next", "--user", "ann")
		require.Error(t, err)
	})

	t.Run("bad field", func(t *testing.T) {
		_, err := execute(t, "--config", cfg, "submit", "--user", "ann", "--phase", "quant",
			"--item", "source_a/r1", "--field", "Edema")
		require.ErrorContains(t, err, "expected name=value")
	})

	t.Run("bad phase", func(t *testing.T) {
		_, err := execute(t, "--config", cfg, "submit", "--user", "ann", "--phase", "both",
			"--item", "source_a/r1")
		require.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "study.yaml")
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("item_id,text\nr1,x\n"), 0o600))
		body := "store:\n  backend: redis\nitems:\n  - path: " + filepath.Join(dir, "a.csv") + "\n    provenance: source_a\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		_, err := execute(t, "--config", path, "next", "--user", "ann")
		require.ErrorContains(t, err, "unknown store backend")
	})
}

func TestParseFields(t *testing.T) {
	got, err := parseFields([]string{"Edema=1", " confidence =high=ish", "empty="})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"Edema": "1", "confidence": "high=ish", "empty": ""}, got)

	_, err = parseFields([]string{"=1"})
	require.Error(t, err)
}
