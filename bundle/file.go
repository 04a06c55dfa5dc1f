package bundle

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// File is a bundle decoded from a file on disk. Blob views point into Data,
// so nothing derived from it may be used after Close.
type File struct {
	*Bundle
	Path    string
	Data    []byte
	mmapped bool
}

// Open maps path read-only and decodes the bundle. If mmap is unavailable the
// whole file is read into memory instead.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := stat.Size()
	if size > int64(int(^uint(0)>>1)) {
		return nil, errors.Errorf("%s: file too large", path)
	}

	if size > 0 {
		data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
		if err == nil {
			return &File{Bundle: Decode(data), Path: path, Data: data, mmapped: true}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read bundle")
	}
	return &File{Bundle: Decode(data), Path: path, Data: data}, nil
}

// ReadFile reads and decodes path without mapping it. Blob views stay valid for
// as long as the result is referenced.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &File{Bundle: Decode(data), Path: path, Data: data}, nil
}

func (f *File) Close() error {
	if !f.mmapped {
		return nil
	}
	f.mmapped = false
	data := f.Data
	f.Data = nil
	return unix.Munmap(data)
}
