// Package upload stores uploaded homework files on disk.
package upload

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Sink persists uploaded files and returns their stored names.
type Sink interface {
	Save(files []*multipart.FileHeader) ([]string, error)
}

// DiskSink writes files into one directory under collision-free names.
type DiskSink struct {
	dir string
}

// NewDiskSink creates dir if needed.
func NewDiskSink(dir string) (*DiskSink, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "create upload dir %s", dir)
	}
	return &DiskSink{dir: dir}, nil
}

func (s *DiskSink) Dir() string {
	return s.dir
}

// Save stores every file in order. On failure the files already written by
// this call are removed.
func (s *DiskSink) Save(files []*multipart.FileHeader) ([]string, error) {
	names := make([]string, 0, len(files))
	for _, fh := range files {
		name, err := newName(fh.Filename)
		if err != nil {
			s.remove(names)
			return nil, err
		}
		if err := s.write(fh, name); err != nil {
			s.remove(names)
			return nil, errors.Wrapf(err, "save %s", fh.Filename)
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *DiskSink) write(fh *multipart.FileHeader, name string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	return s.copyTo(name, src)
}

// copyTo writes src into dir/name. A partial file is removed on error.
func (s *DiskSink) copyTo(name string, src io.Reader) error {
	path := filepath.Join(s.dir, name)
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

func (s *DiskSink) remove(names []string) {
	for _, name := range names {
		_ = os.Remove(filepath.Join(s.dir, name))
	}
}

// newName returns a time-ordered unique name keeping the original extension.
func newName(original string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", errors.Wrap(err, "generate file name")
	}
	return id.String() + strings.ToLower(filepath.Ext(filepath.Base(original))), nil
}
