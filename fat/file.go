package fat

import (
	"github.com/diskfs/go-diskfs/filesystem"
	"github.com/rstms/fatfuzz"
)

// File is an open go-diskfs file that refuses use once its filesystem is
// unmounted.
type File struct {
	fsys   *FileSystem
	f      filesystem.File
	closed bool
}

var _ fatfuzz.File = (*File)(nil)

func (f *File) check() error {
	switch {
	case f.closed:
		return Fatalf("file already closed")
	case !f.fsys.mounted:
		return ErrUnmounted
	}
	return nil
}

func (f *File) Read(p []byte) (int, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	return f.f.Read(p)
}

func (f *File) Write(p []byte) (int, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	return f.f.Write(p)
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	return f.f.Seek(offset, whence)
}

func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.f.Close()
}
