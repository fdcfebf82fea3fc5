package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
}

func scanAll(t *testing.T, opts *ScanOptions) []string {
	t.Helper()
	s := New()
	results, err := s.Scan(context.Background(), opts)
	require.NoError(t, err)

	paths, walkErr := CollectPaths(results)
	require.NoError(t, walkErr)
	sort.Strings(paths)
	return paths
}

func TestScan_FindsPDFsRecursively(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"a.pdf",
		"sub/b.pdf",
		"sub/deep/c.pdf",
		"notes.txt",
		"image.png",
	)

	paths := scanAll(t, &ScanOptions{RootDir: root})

	require.Len(t, paths, 3)
	for _, p := range paths {
		assert.True(t, filepath.IsAbs(p), "expected absolute path, got %s", p)
	}
	assert.Equal(t, "a.pdf", filepath.Base(paths[0]))
	assert.Equal(t, "b.pdf", filepath.Base(paths[1]))
	assert.Equal(t, "c.pdf", filepath.Base(paths[2]))
}

func TestScan_SuffixIsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "upper.PDF", "mixed.Pdf", "lower.pdf")

	paths := scanAll(t, &ScanOptions{RootDir: root})

	assert.Len(t, paths, 3)
}

func TestScan_IgnoresDirectoriesWithSuffix(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "folder.pdf"), 0o755))
	writeFiles(t, root, "folder.pdf/inner.pdf")

	paths := scanAll(t, &ScanOptions{RootDir: root})

	// The directory itself is not a candidate; the file inside is
	require.Len(t, paths, 1)
	assert.Equal(t, "inner.pdf", filepath.Base(paths[0]))
}

func TestScan_EmptyDirYieldsNothing(t *testing.T) {
	paths := scanAll(t, &ScanOptions{RootDir: t.TempDir()})
	assert.Empty(t, paths)
}

func TestScan_CustomSuffix(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.pdf", "b.txt")

	paths := scanAll(t, &ScanOptions{RootDir: root, Suffix: ".txt"})

	require.Len(t, paths, 1)
	assert.Equal(t, "b.txt", filepath.Base(paths[0]))
}

func TestScan_MissingRootFails(t *testing.T) {
	s := New()

	_, err := s.Scan(context.Background(), &ScanOptions{
		RootDir: filepath.Join(t.TempDir(), "does-not-exist"),
	})

	assert.Error(t, err)
}

func TestScan_FileRootFails(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.pdf")

	s := New()
	_, err := s.Scan(context.Background(), &ScanOptions{
		RootDir: filepath.Join(root, "a.pdf"),
	})

	assert.Error(t, err)
}

func TestScan_ContextCancellationStopsStream(t *testing.T) {
	root := t.TempDir()
	names := make([]string, 50)
	for i := range names {
		names[i] = filepath.Join("sub", string(rune('a'+i%26))+string(rune('0'+i/26))+".pdf")
	}
	writeFiles(t, root, names...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New()
	results, err := s.Scan(ctx, &ScanOptions{RootDir: root})
	require.NoError(t, err)

	var count int
	for range results {
		count++
	}
	// Channel closes without delivering the full set
	assert.Less(t, count, 50)
}
