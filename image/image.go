package image

import (
	"bytes"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rstms/fatfuzz"
	"github.com/rstms/fatfuzz/fat"
	"github.com/spf13/afero"
)

const MB = 1024 * 1024

// DefaultSize is the smallest round size go-diskfs formats as FAT32
// without complaint.
const DefaultSize = 10 * MB

// maxScanDepth bounds ScanFiles on images whose directories loop.
const maxScanDepth = 64

type FileRecord struct {
	Name      string
	ShortName string
	Dir       bool
	Size      uint64
	Hidden    bool
	System    bool
	ReadOnly  bool
}

// Image is a FAT image held in memory, used to build seed inputs.
type Image struct {
	disk *fat.MemDisk
	fs   *fat.FileSystem
}

func OpenImage(data []byte) (*Image, error) {
	fsys, err := fat.Mount(data, fatfuzz.DefaultMountOptions())
	if err != nil {
		return nil, Fatal(err)
	}
	return &Image{disk: fsys.Disk(), fs: fsys}, nil
}

func CreateImage(size int64, label string) (*Image, error) {
	if size <= 0 {
		size = DefaultSize
	}
	disk := fat.NewEmptyDisk(size, time.Unix(0, 0))
	fsys, err := fat.Format(disk, label, fatfuzz.DefaultMountOptions())
	if err != nil {
		return nil, Fatal(err)
	}
	return &Image{disk: disk, fs: fsys}, nil
}

// FileSystem exposes the mounted image.
func (i *Image) FileSystem() *fat.FileSystem {
	return i.fs
}

func (i *Image) Close() error {
	if i.fs == nil {
		return nil
	}
	err := i.fs.Unmount()
	i.fs = nil
	if err != nil {
		return Fatal(err)
	}
	return nil
}

// Bytes closes the image and returns a copy of its contents.
func (i *Image) Bytes() ([]byte, error) {
	err := i.Close()
	if err != nil {
		return nil, Fatal(err)
	}
	return bytes.Clone(i.disk.Bytes()), nil
}

func (i *Image) root() (fatfuzz.Directory, error) {
	if i.fs == nil {
		return nil, Fatalf("image is closed")
	}
	return i.fs.RootDir(), nil
}

func (i *Image) ScanFiles() ([]FileRecord, error) {
	imgRoot, err := i.root()
	if err != nil {
		return []FileRecord{}, Fatal(err)
	}
	records, err := walk("/", imgRoot, maxScanDepth)
	if err != nil {
		return []FileRecord{}, Fatal(err)
	}
	return records, nil
}

func walk(dirPath string, dir fatfuzz.Directory, depth int) ([]FileRecord, error) {
	records := []FileRecord{}
	if depth == 0 {
		return records, nil
	}
	for entry, err := range dir.Iter() {
		if err != nil {
			return []FileRecord{}, Fatal(err)
		}
		attr := entry.Attr()
		switch {
		case entry.Name() == ".":
		case entry.Name() == "..":
		case attr.Has(fatfuzz.AttrVolumeId):
		default:
			record := FileRecord{
				Name:      path.Join(dirPath, entry.Name()),
				ShortName: entry.ShortName(),
				Dir:       entry.IsDir(),
				Size:      entry.Len(),
				Hidden:    attr.Has(fatfuzz.AttrHidden),
				System:    attr.Has(fatfuzz.AttrSystem),
				ReadOnly:  attr.Has(fatfuzz.AttrReadOnly),
			}
			if record.Dir {
				record.Size = 0
			}
			records = append(records, record)
			if entry.IsDir() {
				subdir, err := entry.Dir()
				if err != nil {
					return []FileRecord{}, Fatal(err)
				}
				subRecords, err := walk(record.Name, subdir, depth-1)
				if err != nil {
					return []FileRecord{}, Fatal(err)
				}
				records = append(records, subRecords...)
			}
		}
	}
	return records, nil
}

func lookup(dir fatfuzz.Directory, name string) (fatfuzz.DirectoryEntry, error) {
	for entry, err := range dir.Iter() {
		if err != nil {
			return nil, Fatal(err)
		}
		if strings.EqualFold(entry.Name(), name) || strings.EqualFold(entry.ShortName(), name) {
			return entry, nil
		}
	}
	return nil, nil
}

func (i *Image) searchDir(name string) (fatfuzz.Directory, error) {
	dir, err := i.root()
	if err != nil {
		return nil, Fatal(err)
	}
	name = strings.Trim(name, "/")
	if name == "" {
		return dir, nil
	}
	for _, sub := range strings.Split(name, "/") {
		entry, err := lookup(dir, sub)
		if err != nil {
			return nil, Fatal(err)
		}
		if entry == nil || !entry.IsDir() {
			return nil, nil
		}
		dir, err = entry.Dir()
		if err != nil {
			return nil, Fatal(err)
		}
	}
	return dir, nil
}

func (i *Image) getDir(name string) (fatfuzz.Directory, error) {
	dir, err := i.searchDir(name)
	if err != nil {
		return nil, Fatal(err)
	}
	if dir == nil {
		return nil, Fatalf("directory not found: %s", name)
	}
	return dir, nil
}

func (i *Image) IsDir(name string) (bool, error) {
	dir, err := i.searchDir(name)
	if err != nil {
		return false, Fatal(err)
	}
	return dir != nil, nil
}

func (i *Image) Mkdir(pathname string) error {
	exists, err := i.IsDir(pathname)
	if err != nil {
		return Fatal(err)
	}
	if exists {
		return Fatalf("directory exists: %s", pathname)
	}
	dir, name := path.Split(strings.TrimRight(pathname, "/"))
	parent, err := i.getDir(dir)
	if err != nil {
		return Fatal(err)
	}
	_, err = parent.CreateDir(name)
	if err != nil {
		return Fatal(err)
	}
	return nil
}

// AddFile copies src into a new file at dstPathname. The parent directory
// must exist.
func (i *Image) AddFile(dstPathname string, src io.Reader) error {
	dstDir, dstName := path.Split(dstPathname)
	dir, err := i.getDir(dstDir)
	if err != nil {
		return Fatal(err)
	}
	dst, err := dir.CreateFile(dstName)
	if err != nil {
		return Fatal(err)
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	if err != nil {
		return Fatal(err)
	}
	return nil
}

// Import writes the tree under root on fsys into the image root.
func (i *Image) Import(fsys afero.Fs, root string) error {
	err := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return Fatal(err)
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return Fatal(err)
		}
		dst := "/" + filepath.ToSlash(rel)
		if info.IsDir() {
			err := i.Mkdir(dst)
			if err != nil {
				return Fatal(err)
			}
			return nil
		}
		src, err := fsys.Open(p)
		if err != nil {
			return Fatal(err)
		}
		defer src.Close()
		err = i.AddFile(dst, src)
		if err != nil {
			return Fatal(err)
		}
		return nil
	})
	if err != nil {
		return Fatal(err)
	}
	return nil
}
