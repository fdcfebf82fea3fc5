package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Scanner discovers PDF documents in a directory tree.
type Scanner struct{}

// New creates a new Scanner instance.
func New() *Scanner {
	return &Scanner{}
}

// Scan discovers all matching documents under the root directory.
// It returns a channel of ScanResult that streams files as they are
// discovered. The channel is closed when scanning is complete.
//
// A root that does not exist or is not a directory fails here; per-entry
// access failures during the walk are logged and skipped.
func (s *Scanner) Scan(ctx context.Context, opts *ScanOptions) (<-chan ScanResult, error) {
	if opts == nil {
		opts = &ScanOptions{}
	}

	// Validate root directory
	rootDir := opts.RootDir
	if rootDir == "" {
		rootDir = "."
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", absRoot)
	}

	suffix := opts.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}

	// Create result channel
	results := make(chan ScanResult, 64)

	// Start scanning in background
	go func() {
		defer close(results)
		s.scan(ctx, absRoot, suffix, opts, results)
	}()

	return results, nil
}

// scan performs the actual directory traversal.
func (s *Scanner) scan(ctx context.Context, absRoot, suffix string, opts *ScanOptions, results chan<- ScanResult) {
	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			// Skip entries we can't access, keep walking
			slog.Warn("scan_entry_skipped",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return nil
		}

		if d.IsDir() {
			return nil
		}

		// Handle symlinks
		if d.Type()&fs.ModeSymlink != 0 && !opts.FollowSymlinks {
			return nil
		}

		// Suffix match is case-insensitive: Report.PDF counts
		if !strings.HasSuffix(strings.ToLower(d.Name()), strings.ToLower(suffix)) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			slog.Warn("scan_entry_skipped",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return nil
		}

		fileInfo := &FileInfo{
			AbsPath: path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}

		select {
		case results <- ScanResult{File: fileInfo}:
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})

	if err != nil && err != context.Canceled {
		select {
		case results <- ScanResult{Error: err}:
		case <-ctx.Done():
		}
	}
}

// CollectPaths drains a scan channel into a slice of absolute paths.
// Entry errors are logged and skipped; the walk error, if any, is returned.
func CollectPaths(results <-chan ScanResult) ([]string, error) {
	var paths []string
	var walkErr error
	for r := range results {
		if r.Error != nil {
			walkErr = r.Error
			continue
		}
		if r.File != nil {
			paths = append(paths, r.File.AbsPath)
		}
	}
	return paths, walkErr
}
