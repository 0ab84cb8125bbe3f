// Package jsonfile persists a single JSON document on an afero filesystem.
//
// Every Save rewrites the whole document through a temp file and a rename, so
// a reader never observes a half-written file. Callers serialize access.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// ErrCorrupt is returned by Load when the document cannot be decoded.
var ErrCorrupt = errors.New("jsonfile: document is corrupt")

// CorruptError reports an undecodable document and where it was copied to.
type CorruptError struct {
	Path   string
	Backup string
	Err    error
}

func (e *CorruptError) Error() string {
	if e.Backup == "" {
		return fmt.Sprintf("jsonfile: %s is corrupt: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("jsonfile: %s is corrupt (copied to %s): %v", e.Path, e.Backup, e.Err)
}

// Is lets errors.Is match ErrCorrupt.
func (e *CorruptError) Is(target error) bool {
	return target == ErrCorrupt
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// File reads and writes one JSON document of type T.
type File[T any] struct {
	fs   afero.Fs
	path string
	now  func() time.Time
}

// New returns a File at path on fsys. A nil fsys means the OS filesystem.
func New[T any](fsys afero.Fs, path string) *File[T] {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &File[T]{fs: fsys, path: filepath.Clean(path), now: time.Now}
}

// Path returns the document location.
func (f *File[T]) Path() string {
	return f.path
}

// Load decodes the document.
//
// A missing file yields an error matching fs.ErrNotExist. An empty file yields
// the zero value. An undecodable file is copied to "<path>.corrupt-<unix>" and
// a *CorruptError is returned; the original is left in place until the next Save.
func (f *File[T]) Load() (T, error) {
	var zero T

	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return zero, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return zero, nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		cerr := &CorruptError{Path: f.path, Err: err}

		backup := fmt.Sprintf("%s.corrupt-%d", f.path, f.now().Unix())
		if werr := afero.WriteFile(f.fs, backup, data, 0o600); werr == nil {
			cerr.Backup = backup
		}

		return zero, cerr
	}

	return v, nil
}

// Save encodes v and atomically replaces the document.
func (f *File[T]) Save(v T) (err error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	if err := f.fs.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := afero.TempFile(f.fs, dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.fs.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return f.fs.Rename(tmp.Name(), f.path)
}

// IsNotExist reports whether err means the document has not been written yet.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err)
}
