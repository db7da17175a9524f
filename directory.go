package fatfuzz

import (
	"iter"
	"time"
)

type DirectoryAttr uint8

const (
	AttrReadOnly  DirectoryAttr = 0x01
	AttrHidden    DirectoryAttr = 0x02
	AttrSystem    DirectoryAttr = 0x04
	AttrVolumeId  DirectoryAttr = 0x08
	AttrDirectory DirectoryAttr = 0x10
	AttrArchive   DirectoryAttr = 0x20
	AttrLongName                = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeId
)

// Has reports whether every bit of flag is set.
func (a DirectoryAttr) Has(flag DirectoryAttr) bool {
	return a&flag == flag
}

// Directory is an entry in a filesystem that stores files.
//
// A Directory is a navigational handle, not an owner: several handles may
// refer to the same on-disk directory.
type Directory interface {
	// Iter enumerates the entries in on-disk order. The sequence is lazy and
	// single pass. A non-nil error element means the directory could not be
	// read past that point.
	Iter() iter.Seq2[DirectoryEntry, error]

	CreateFile(name string) (File, error)
	CreateDir(name string) (Directory, error)

	// Rename moves src in this directory to dstName in dst.
	Rename(src string, dst Directory, dstName string) error
	Remove(name string) error
}

// DirectoryEntry represents a single entry within a directory,
// which can be either another Directory or a File.
type DirectoryEntry interface {
	// ShortNameBytes returns the 8.3 name in the OEM code page, with the
	// dot separator and without padding.
	ShortNameBytes() []byte
	// LongNameUCS2 returns the long file name as UTF-16 code units, or nil
	// when the entry has no long name.
	LongNameUCS2() []uint16
	// Name is the long name when present, the short name otherwise.
	Name() string
	ShortName() string

	Attr() DirectoryAttr
	Len() uint64
	Created() time.Time
	Accessed() time.Time
	Modified() time.Time

	IsDir() bool
	IsFile() bool
	Dir() (Directory, error)
	File() (File, error)
}
