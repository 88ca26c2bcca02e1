package repo

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// skipDirs are directories that never carry detection-relevant manifests
// but can be enormous.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
}

// hiddenAllowed are hidden directories that do carry CI configuration.
var hiddenAllowed = map[string]bool{
	".github":   true,
	".gitlab":   true,
	".circleci": true,
}

// Local serves files from a directory on disk.
type Local struct {
	root string
}

// NewLocal returns a Provider rooted at dir.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve repository root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat repository root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository root %s is not a directory", dir)
	}
	return &Local{root: abs}, nil
}

// Root returns the absolute repository root.
func (l *Local) Root() string {
	return l.root
}

// ListFiles implements Provider.
func (l *Local) ListFiles(ctx context.Context, path string, recursive bool, maxDepth int) ([]File, error) {
	base := filepath.Join(l.root, filepath.FromSlash(path))
	var files []File

	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if p == base {
				return walkErr
			}
			return nil // unreadable subtree, keep going
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(base, p)
		if err != nil || rel == "." {
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator)) + 1

		if d.IsDir() {
			name := d.Name()
			if skipDirs[name] {
				return filepath.SkipDir
			}
			if strings.HasPrefix(name, ".") && !hiddenAllowed[name] {
				return filepath.SkipDir
			}
			files = append(files, File{
				Name:  name,
				Path:  filepath.ToSlash(filepath.Join(path, rel)),
				IsDir: true,
			})
			if !recursive || (maxDepth > 0 && depth >= maxDepth) {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, File{
			Name: d.Name(),
			Path: filepath.ToSlash(filepath.Join(path, rel)),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	return files, nil
}

// ReadFile implements Provider.
func (l *Local) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(l.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, err
	}
	return data, nil
}
