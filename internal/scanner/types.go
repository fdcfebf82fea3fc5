// Package scanner discovers PDF documents under a directory tree.
// It streams candidates over a channel so extraction can start before the
// walk finishes.
package scanner

import "time"

// FileInfo contains metadata about a discovered document.
type FileInfo struct {
	// AbsPath is the absolute, normalized path.
	AbsPath string
	// Size is the file size in bytes.
	Size int64
	// ModTime is the last modification time.
	ModTime time.Time
}

// ScanOptions configures the scanner behavior.
type ScanOptions struct {
	// RootDir is the directory to scan.
	RootDir string

	// Suffix is the filename suffix to match, compared case-insensitively
	// (default: ".pdf").
	Suffix string

	// FollowSymlinks enables following symbolic links (default: false).
	FollowSymlinks bool
}

// ScanResult is returned from the scanner channel.
type ScanResult struct {
	File  *FileInfo
	Error error
}

// DefaultSuffix is the document suffix matched when none is configured.
const DefaultSuffix = ".pdf"
