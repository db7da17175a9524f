package fatfuzz

import "io"

// File is an open handle on the contents of one file.
type File interface {
	io.ReadWriteSeeker
	io.Closer
}
