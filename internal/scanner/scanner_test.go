package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrisk/pyrisk/pkg/types"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
}

func TestScan_BasicTree(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.py":         "def main():\n    pass\n",
		"pkg/helpers.py": "def helper():\n    pass\n",
		"README.md":      "not python\n",
		"script.sh":      "echo hi\n",
	})

	result, err := Scan(context.Background(), root, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"app.py", "pkg/helpers.py"}, result.Paths())
	assert.Empty(t, result.Errors)

	app := result.Files["app.py"]
	require.NotNil(t, app)
	assert.True(t, app.Status.OK())
	require.Len(t, app.Functions, 1)
	assert.Equal(t, "main", app.Functions[0].Name)
}

func TestScan_EmptyDir(t *testing.T) {
	result, err := Scan(context.Background(), t.TempDir(), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Empty(t, result.Errors)
}

func TestScan_BadRoot(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "missing"), DefaultOptions())
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.py")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0644))
	_, err = Scan(context.Background(), file, DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestScan_ExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.py":                     "x = 1\n",
		"__pycache__/app.py":         "x = 1\n",
		"sub/__pycache__/mod.py":     "x = 1\n",
		".venv/lib/site.py":          "x = 1\n",
		"build/out.py":               "x = 1\n",
		"generated_skip.py":          "x = 1\n",
	})

	opts := DefaultOptions()
	opts.ExcludePatterns = append(opts.ExcludePatterns, "generated_*.py")

	result, err := Scan(context.Background(), root, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"app.py"}, result.Paths())
}

func TestScan_TooLargeFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"big.py":   "x = 1\n" + strings.Repeat("# padding\n", 100),
		"small.py": "y = 2\n",
	})

	opts := DefaultOptions()
	opts.MaxFileSize = 64

	result, err := Scan(context.Background(), root, opts)
	require.NoError(t, err)

	big := result.Files["big.py"]
	require.NotNil(t, big)
	assert.Equal(t, types.ParseSkippedTooLarge, big.Status.State)
	assert.Empty(t, big.Functions)
	assert.Empty(t, result.Errors)

	assert.True(t, result.Files["small.py"].Status.OK())
}

func TestScan_MalformedFileIsContained(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"good.py":   "def ok():\n    pass\n",
		"broken.py": "def broken(:\n    pass\n",
	})

	result, err := Scan(context.Background(), root, DefaultOptions())
	require.NoError(t, err)

	// The broken file stays in the map with a failed status and is also
	// surfaced in the error list.
	broken := result.Files["broken.py"]
	require.NotNil(t, broken)
	assert.Equal(t, types.ParseFailed, broken.Status.State)
	assert.Greater(t, broken.TotalLines, 0)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "broken.py", result.Errors[0].Path)

	assert.True(t, result.Files["good.py"].Status.OK())
}

func TestScan_UnreadableSubtreeRecorded(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"app.py":        "x = 1\n",
		"locked/mod.py": "y = 2\n",
	})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	result, err := Scan(context.Background(), root, DefaultOptions())
	require.NoError(t, err)

	// The unreadable subtree is reported, not silently dropped, and the
	// rest of the tree still scans.
	assert.Equal(t, []string{"app.py"}, result.Paths())
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "locked", result.Errors[0].Path)
	assert.NotEmpty(t, result.Errors[0].Message)
}

func TestScan_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"app.py": "x = 1\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, root, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScan_DeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"z.py":     "x = 1\n",
		"a.py":     "x = 1\n",
		"m/mid.py": "x = 1\n",
	})

	opts := DefaultOptions()
	opts.Workers = 4

	first, err := Scan(context.Background(), root, opts)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		next, err := Scan(context.Background(), root, opts)
		require.NoError(t, err)
		assert.Equal(t, first.Paths(), next.Paths())
	}
	assert.Equal(t, []string{"a.py", "m/mid.py", "z.py"}, first.Paths())
}
