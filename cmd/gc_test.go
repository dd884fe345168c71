package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLine = "2020-01-01T00:00:00.000+0000: 1.234: [GC (Allocation Failure) " +
	"[PSYoungGen: 1024K->512K(2048K)] 4096K->3584K(8192K), 0.0123456 secs] " +
	"[Times: user=0.01 sys=0.00, real=0.02 secs]\n"

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gc.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	outputFormat = ""
	t.Cleanup(func() { outputFormat = "" })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestGCParse_JSON(t *testing.T) {
	out, err := execute(t, "gc", "parse", "-o", "json", writeLog(t, sampleLine))
	require.NoError(t, err)

	assert.Contains(t, out, `"phaseName": "Pause Young (mixed)"`)
	assert.Contains(t, out, `"durationMs": "12.35"`)
}

func TestGCParse_YAMLMultipleFiles(t *testing.T) {
	out, err := execute(t, "gc", "parse", "-o", "yaml", writeLog(t, sampleLine), writeLog(t, sampleLine))
	require.NoError(t, err)

	assert.Equal(t, 2, bytes.Count([]byte(out), []byte("---\n")))
	assert.Contains(t, out, "phaseName: Pause Young (mixed)")
}

func TestGCParse_InvalidFormat(t *testing.T) {
	_, err := execute(t, "gc", "parse", "-o", "csv", writeLog(t, sampleLine))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestGCParse_MissingFile(t *testing.T) {
	_, err := execute(t, "gc", "parse", "-o", "json", filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)
}

func TestGCValidate(t *testing.T) {
	out, err := execute(t, "gc", "validate", writeLog(t, sampleLine))
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	_, err = execute(t, "gc", "validate", writeLog(t, "Java HotSpot(TM) 64-Bit Server VM\n"))
	assert.ErrorIs(t, err, errNoCycles)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gclog version dev\n", out)
}
