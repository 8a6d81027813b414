package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/term-indexer/pkg/errors"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"TI_CONFIG", "TI_KAFKA_BROKERS", "TI_POSTGRES_HOST", "TI_METRICS_ENABLED", "TI_METRICS_TEXTFILE", "TI_STOPWORDS_PATH", "TI_EXTRACTOR", "TI_WORKERS"} {
		t.Setenv(key, "")
	}
	t.Setenv("TI_LOGGING_LEVEL", "error")
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestRunUsage(t *testing.T) {
	isolateEnv(t)
	var stderr bytes.Buffer
	assert.Equal(t, apperrors.ExitUsage, run([]string{"only-one"}, &stderr))
	assert.Contains(t, stderr.String(), usage)

	stderr.Reset()
	assert.Equal(t, apperrors.ExitUsage, run(nil, &stderr))
}

func TestRunMissingStopwords(t *testing.T) {
	isolateEnv(t)
	require.NoError(t, os.Mkdir("docs", 0o755))
	var stderr bytes.Buffer
	assert.Equal(t, apperrors.ExitFailure, run([]string{"docs", "out"}, &stderr))
}

func TestRunMissingInput(t *testing.T) {
	isolateEnv(t)
	require.NoError(t, os.WriteFile("stopwords.txt", []byte("the\n"), 0o644))
	var stderr bytes.Buffer
	assert.Equal(t, apperrors.ExitInputMissing, run([]string{"absent", "out"}, &stderr))
	assert.Contains(t, stderr.String(), "absent")
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := isolateEnv(t)
	textfile := filepath.Join(dir, "indexer.prom")
	t.Setenv("TI_METRICS_TEXTFILE", textfile)
	require.NoError(t, os.WriteFile("stopwords.txt", []byte("the\nand\n"), 0o644))
	require.NoError(t, os.Mkdir("docs", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("docs", "a.html"), []byte("<p>apple apple mango</p>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join("docs", "b.html"), []byte("<p>the apple and grape</p>"), 0o644))

	var stderr bytes.Buffer
	require.Equal(t, apperrors.ExitOK, run([]string{"docs", "out/nested"}, &stderr), stderr.String())

	dict, err := os.ReadFile(filepath.Join("out", "nested", "DictionaryFile.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(dict), "apple\n2\n1\ngrape\n1\n3\nmango\n1\n4\n")

	post, err := os.ReadFile(filepath.Join("out", "nested", "PostingFile.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(post), "a.html, 0.667\nb.html, 0.500\nb.html, 1.000\na.html, 0.667\n")

	prom, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `indexer_runs_total{status="success"} 1`)
}
