package shader

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SourceFile identifies one file taking part in a pre-processor run.
type SourceFile struct {
	// Path is the canonical path, used for self-use and multi-use detection.
	Path string

	// Dir is the directory containing the file.
	Dir string

	// Name is the display name used in diagnostics.
	Name string
}

// sourceReader abstracts where shader files come from: the host filesystem or an fs.FS.
type sourceReader interface {
	// canonical resolves p to the form used for identity comparisons.
	canonical(p string) string

	// join resolves rel against dir and canonicalizes the result.
	join(dir, rel string) string

	// dir returns the directory of a canonical path.
	dir(p string) string

	// read returns the full content of a canonical path.
	read(p string) ([]byte, error)
}

// osReader reads from the host filesystem. Paths are absolute, cleaned and, when the target
// exists, have symlinks evaluated so that two spellings of one file compare equal.
type osReader struct{}

func (osReader) canonical(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	// missing files still get their directory resolved so they compare against existing ones
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs))
	}
	return abs
}

func (r osReader) join(dir, rel string) string {
	rel = filepath.FromSlash(strings.ReplaceAll(rel, `\`, "/"))
	if filepath.IsAbs(rel) {
		return r.canonical(rel)
	}
	return r.canonical(filepath.Join(dir, rel))
}

func (osReader) dir(p string) string {
	return filepath.Dir(p)
}

func (osReader) read(p string) ([]byte, error) {
	return os.ReadFile(p)
}

// fsReader reads from an fs.FS such as an embed.FS. Paths are slash separated and rooted at
// the filesystem root.
type fsReader struct {
	fsys fs.FS
}

func (fsReader) canonical(p string) string {
	p = path.Clean(strings.ReplaceAll(p, `\`, "/"))
	return strings.TrimPrefix(p, "/")
}

func (r fsReader) join(dir, rel string) string {
	rel = strings.ReplaceAll(rel, `\`, "/")
	if strings.HasPrefix(rel, "/") {
		return r.canonical(rel)
	}
	return r.canonical(path.Join(dir, rel))
}

func (fsReader) dir(p string) string {
	return path.Dir(p)
}

func (r fsReader) read(p string) ([]byte, error) {
	return fs.ReadFile(r.fsys, p)
}

// displayName renders a canonical path relative to the entry directory when possible,
// falling back to the path itself for files outside it.
func displayName(entryDir, p string) string {
	rel, err := filepath.Rel(entryDir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return filepath.ToSlash(rel)
}
