// Package repo provides access to the files of a source repository. The
// analyzers only see the Provider interface, so the same detection logic
// works against a local checkout or a remote file API.
package repo

import "context"

// File is one repository entry. Content is optional: listings return
// metadata only, ReadFile fills content on demand.
type File struct {
	Name    string
	Path    string
	Size    int64
	IsDir   bool
	Content []byte
}

// Provider exposes repository file access to the analyzers. "Nothing there"
// is an empty listing or os.ErrNotExist from ReadFile, never a panic.
type Provider interface {
	// ListFiles returns entries under path. With recursive set, descent
	// stops at maxDepth levels below path (0 means unlimited).
	ListFiles(ctx context.Context, path string, recursive bool, maxDepth int) ([]File, error)

	// ReadFile returns the content of one file.
	ReadFile(ctx context.Context, path string) ([]byte, error)
}
