package fat

import (
	iofs "io/fs"
	"iter"
	"os"
	"path"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/rstms/fatfuzz"
)

// Directory implements fatfuzz.Directory and is used to interface with
// a directory on a FAT filesystem. It holds a path, not the directory
// contents, so every Iter reads the engine afresh.
type Directory struct {
	fsys *FileSystem
	path string
}

// ensure Directory implements fatfuzz.Directory
var _ fatfuzz.Directory = (*Directory)(nil)

// DirectoryEntry implements fatfuzz.DirectoryEntry and represents a single
// file/folder within a directory in a FAT filesystem.
type DirectoryEntry struct {
	dir       *Directory
	name      string
	shortName string
	size      int64
	isDir     bool
	modTime   time.Time
}

// ensure DirectoryEntry implements fatfuzz.DirectoryEntry
var _ fatfuzz.DirectoryEntry = (*DirectoryEntry)(nil)

type shortNamer interface {
	ShortName() string
}

func (d *Directory) Path() string {
	return d.path
}

func (d *Directory) join(name string) string {
	return path.Join(d.path, name)
}

// Iter enumerates the entries the engine returns. The "." and ".."
// aliases are skipped.
func (d *Directory) Iter() iter.Seq2[fatfuzz.DirectoryEntry, error] {
	return func(yield func(fatfuzz.DirectoryEntry, error) bool) {
		if !d.fsys.mounted {
			yield(nil, ErrUnmounted)
			return
		}
		entries, err := d.fsys.engine.ReadDir(d.path)
		if err != nil {
			yield(nil, Fatal(err))
			return
		}
		for _, info := range entries {
			if info.Name() == "." || info.Name() == ".." {
				continue
			}
			if !yield(d.decodeEntry(info), nil) {
				return
			}
		}
	}
}

func (d *Directory) decodeEntry(info iofs.FileInfo) *DirectoryEntry {
	entry := &DirectoryEntry{
		dir:     d,
		name:    info.Name(),
		size:    info.Size(),
		isDir:   info.IsDir(),
		modTime: info.ModTime(),
	}
	if sn, ok := info.(shortNamer); ok && sn.ShortName() != "" {
		entry.shortName = sn.ShortName()
	} else {
		entry.shortName = strings.ToUpper(entry.name)
	}
	return entry
}

func (d *Directory) CreateFile(name string) (fatfuzz.File, error) {
	if !d.fsys.mounted {
		return nil, ErrUnmounted
	}
	f, err := d.fsys.engine.OpenFile(d.join(name), os.O_CREATE|os.O_RDWR)
	if err != nil {
		return nil, Fatal(err)
	}
	return &File{fsys: d.fsys, f: f}, nil
}

func (d *Directory) CreateDir(name string) (fatfuzz.Directory, error) {
	if !d.fsys.mounted {
		return nil, ErrUnmounted
	}
	err := d.fsys.engine.Mkdir(d.join(name))
	if err != nil {
		return nil, Fatal(err)
	}
	return &Directory{fsys: d.fsys, path: d.join(name)}, nil
}

func (d *Directory) Rename(src string, dst fatfuzz.Directory, dstName string) error {
	target, ok := dst.(*Directory)
	if !ok || target.fsys != d.fsys {
		return ErrForeignDirectory
	}
	if !d.fsys.mounted {
		return ErrUnmounted
	}
	err := d.fsys.engine.Rename(d.join(src), target.join(dstName))
	if err != nil {
		return Fatal(err)
	}
	return nil
}

func (d *Directory) Remove(name string) error {
	if !d.fsys.mounted {
		return ErrUnmounted
	}
	err := d.fsys.engine.Remove(d.join(name))
	if err != nil {
		return Fatal(err)
	}
	return nil
}

func (e *DirectoryEntry) Name() string {
	return e.name
}

func (e *DirectoryEntry) ShortName() string {
	return e.shortName
}

func (e *DirectoryEntry) ShortNameBytes() []byte {
	return fatfuzz.EncodeOEM(e.dir.fsys.opts.Converter, e.shortName)
}

// LongNameUCS2 is nil when the name matches the 8.3 form ignoring case.
func (e *DirectoryEntry) LongNameUCS2() []uint16 {
	if strings.EqualFold(e.name, e.shortName) {
		return nil
	}
	return utf16.Encode([]rune(e.name))
}

// Attr carries only the directory and archive bits. The engine does not
// expose read-only, hidden or system.
func (e *DirectoryEntry) Attr() fatfuzz.DirectoryAttr {
	var attr fatfuzz.DirectoryAttr
	if e.isDir {
		attr |= fatfuzz.AttrDirectory
	} else {
		attr |= fatfuzz.AttrArchive
	}
	return attr
}

func (e *DirectoryEntry) Len() uint64 {
	if e.size < 0 {
		return 0
	}
	return uint64(e.size)
}

// Created is not exposed by the engine.
func (e *DirectoryEntry) Created() time.Time {
	return time.Time{}
}

// Accessed is not exposed by the engine.
func (e *DirectoryEntry) Accessed() time.Time {
	return time.Time{}
}

func (e *DirectoryEntry) Modified() time.Time {
	return e.modTime.In(e.dir.fsys.opts.TimeProvider.Location())
}

func (e *DirectoryEntry) IsDir() bool {
	return e.isDir
}

func (e *DirectoryEntry) IsFile() bool {
	return !e.isDir
}

func (e *DirectoryEntry) Dir() (fatfuzz.Directory, error) {
	if !e.isDir {
		return nil, Wrapf(ErrNotDirectory, "%s", e.dir.join(e.name))
	}
	return &Directory{fsys: e.dir.fsys, path: e.dir.join(e.name)}, nil
}

func (e *DirectoryEntry) File() (fatfuzz.File, error) {
	if e.isDir {
		return nil, Wrapf(ErrNotFile, "%s", e.dir.join(e.name))
	}
	if !e.dir.fsys.mounted {
		return nil, ErrUnmounted
	}
	f, err := e.dir.fsys.engine.OpenFile(e.dir.join(e.name), os.O_RDWR)
	if err != nil {
		return nil, Fatal(err)
	}
	return &File{fsys: e.dir.fsys, f: f}, nil
}
