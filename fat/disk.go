package fat

import (
	"bytes"
	"io"
	"io/fs"
	"time"

	"github.com/rstms/fatfuzz"
)

// MemDisk is an in-memory block device over a private copy of an image.
// It satisfies fatfuzz.Storage and the fs.File shape go-diskfs backends
// are built from.
type MemDisk struct {
	data    []byte
	off     int64
	modTime time.Time
	closed  bool
}

var _ fatfuzz.Storage = (*MemDisk)(nil)

// NewMemDisk copies data; the caller's slice is never written.
func NewMemDisk(data []byte, now time.Time) *MemDisk {
	return &MemDisk{
		data:    bytes.Clone(data),
		modTime: now,
	}
}

// NewEmptyDisk returns a zero-filled disk of size bytes.
func NewEmptyDisk(size int64, now time.Time) *MemDisk {
	return &MemDisk{
		data:    make([]byte, size),
		modTime: now,
	}
}

func (d *MemDisk) Size() int64 {
	return int64(len(d.data))
}

// Bytes returns the current image contents.
func (d *MemDisk) Bytes() []byte {
	return d.data
}

func (d *MemDisk) ReadAt(p []byte, off int64) (int, error) {
	if d.closed {
		return 0, fs.ErrClosed
	}
	if off < 0 {
		return 0, Fatalf("negative offset %d", off)
	}
	if off >= int64(len(d.data)) {
		return 0, io.EOF
	}
	n := copy(p, d.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt never grows the disk; writes past the end are short.
func (d *MemDisk) WriteAt(p []byte, off int64) (int, error) {
	if d.closed {
		return 0, fs.ErrClosed
	}
	if off < 0 {
		return 0, Fatalf("negative offset %d", off)
	}
	if off >= int64(len(d.data)) {
		return 0, io.ErrShortWrite
	}
	n := copy(d.data[off:], p)
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

func (d *MemDisk) Read(p []byte) (int, error) {
	n, err := d.ReadAt(p, d.off)
	d.off += int64(n)
	return n, err
}

func (d *MemDisk) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = d.off + offset
	case io.SeekEnd:
		abs = int64(len(d.data)) + offset
	default:
		return 0, Fatalf("invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, Fatalf("negative position %d", abs)
	}
	d.off = abs
	return abs, nil
}

func (d *MemDisk) Stat() (fs.FileInfo, error) {
	return memDiskInfo{size: d.Size(), modTime: d.modTime}, nil
}

func (d *MemDisk) Close() error {
	d.closed = true
	return nil
}

type memDiskInfo struct {
	size    int64
	modTime time.Time
}

func (i memDiskInfo) Name() string       { return "memdisk" }
func (i memDiskInfo) Size() int64        { return i.size }
func (i memDiskInfo) Mode() fs.FileMode  { return 0600 }
func (i memDiskInfo) ModTime() time.Time { return i.modTime }
func (i memDiskInfo) IsDir() bool        { return false }
func (i memDiskInfo) Sys() any           { return nil }
