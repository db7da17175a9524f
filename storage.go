package fatfuzz

import (
	"io"
	"time"
)

// Storage is the byte-addressable, seekable device a filesystem is
// mounted from.
type Storage interface {
	io.ReaderAt
	io.WriterAt
	io.Seeker
	Size() int64
}

// TimeProvider supplies the clock and the zone used to interpret FAT
// timestamps, which carry no zone of their own.
type TimeProvider interface {
	Now() time.Time
	Location() *time.Location
}

// OemCpConverter maps between the OEM code page used by short names and
// volume labels and unicode.
type OemCpConverter interface {
	Decode(b byte) rune
	Encode(r rune) (byte, bool)
}

type localTimeProvider struct{}

func (localTimeProvider) Now() time.Time           { return time.Now() }
func (localTimeProvider) Location() *time.Location { return time.Local }

// LocalTime is the wall clock in the local zone.
var LocalTime TimeProvider = localTimeProvider{}

// MountOptions configures how an engine interprets a volume.
type MountOptions struct {
	TimeProvider TimeProvider
	Converter    OemCpConverter
}

func DefaultMountOptions() MountOptions {
	return MountOptions{
		TimeProvider: LocalTime,
		Converter:    Cp437,
	}
}

// WithDefaults fills unset fields from DefaultMountOptions.
func (o MountOptions) WithDefaults() MountOptions {
	d := DefaultMountOptions()
	if o.TimeProvider == nil {
		o.TimeProvider = d.TimeProvider
	}
	if o.Converter == nil {
		o.Converter = d.Converter
	}
	return o
}
