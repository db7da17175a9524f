package fat

import (
	"unicode"

	"github.com/diskfs/go-diskfs/backend/file"
	"github.com/diskfs/go-diskfs/filesystem/fat32"
	"github.com/rstms/fatfuzz"
)

// FileSystem is the implementation of fatfuzz.FileSystem backed by the
// go-diskfs FAT32 engine. Volume metadata the engine does not expose is
// read from the boot sector directly.
type FileSystem struct {
	bs      *BootSector
	disk    *MemDisk
	engine  *fat32.FileSystem
	opts    fatfuzz.MountOptions
	mounted bool
}

// ensure FileSystem implements fatfuzz.FileSystem
var _ fatfuzz.FileSystem = (*FileSystem)(nil)

// Mount interprets data as a FAT image. data is copied and never written.
func Mount(data []byte, opts fatfuzz.MountOptions) (*FileSystem, error) {
	opts = opts.WithDefaults()
	return New(NewMemDisk(data, opts.TimeProvider.Now()), opts)
}

// New returns a new FileSystem for accessing a previously created
// FAT filesystem on disk.
func New(disk *MemDisk, opts fatfuzz.MountOptions) (*FileSystem, error) {
	opts = opts.WithDefaults()
	// blocksize 0 lets the engine take the sector size from the BPB
	engine, err := fat32.Read(file.New(disk, false), disk.Size(), 0, 0)
	if err != nil {
		return nil, Fatal(err)
	}
	return attach(disk, engine, opts)
}

// Format creates an empty FAT32 filesystem covering all of disk.
func Format(disk *MemDisk, label string, opts fatfuzz.MountOptions) (*FileSystem, error) {
	opts = opts.WithDefaults()
	engine, err := fat32.Create(file.New(disk, false), disk.Size(), 0, 512, label)
	if err != nil {
		return nil, Fatal(err)
	}
	return attach(disk, engine, opts)
}

func attach(disk *MemDisk, engine *fat32.FileSystem, opts fatfuzz.MountOptions) (*FileSystem, error) {
	bs, err := DecodeBootSector(disk)
	if err != nil {
		_ = engine.Close()
		return nil, Fatal(err)
	}
	result := &FileSystem{
		bs:      bs,
		disk:    disk,
		engine:  engine,
		opts:    opts,
		mounted: true,
	}
	return result, nil
}

// Disk returns the storage the filesystem is mounted from.
func (f *FileSystem) Disk() *MemDisk {
	return f.disk
}

func (f *FileSystem) BootSector() *BootSector {
	return f.bs
}

func (f *FileSystem) FATType() fatfuzz.FATType {
	return f.bs.FATType()
}

func (f *FileSystem) VolumeID() uint32 {
	return f.bs.Ext.VolumeID
}

func (f *FileSystem) VolumeLabelBytes() []byte {
	return f.bs.VolumeLabelBytes()
}

func (f *FileSystem) VolumeLabel() (string, error) {
	return f.decodeLabel(f.bs.VolumeLabelBytes())
}

func (f *FileSystem) RootVolumeLabelBytes() ([]byte, error) {
	if !f.mounted {
		return nil, ErrUnmounted
	}
	return f.bs.RootLabelBytes(f.disk, f.disk.Size())
}

func (f *FileSystem) RootVolumeLabel() (string, error) {
	raw, err := f.RootVolumeLabelBytes()
	if err != nil {
		return "", err
	}
	return f.decodeLabel(raw)
}

// decodeLabel rejects labels holding control characters, which no
// formatter writes.
func (f *FileSystem) decodeLabel(raw []byte) (string, error) {
	label := fatfuzz.DecodeOEM(f.opts.Converter, raw)
	for _, r := range label {
		if unicode.IsControl(r) {
			return "", Fatalf("volume label %q holds control character %U", label, r)
		}
	}
	return label, nil
}

func (f *FileSystem) ClusterSize() uint32 {
	return f.bs.ClusterSize()
}

func (f *FileSystem) StatusFlags() (fatfuzz.StatusFlags, error) {
	if !f.mounted {
		return fatfuzz.StatusFlags{}, ErrUnmounted
	}
	return f.bs.StatusFlags(f.disk)
}

func (f *FileSystem) Stats() (fatfuzz.FileSystemStats, error) {
	if !f.mounted {
		return fatfuzz.FileSystemStats{}, ErrUnmounted
	}
	return f.bs.Stats(f.disk, f.disk.Size())
}

func (f *FileSystem) RootDir() fatfuzz.Directory {
	return &Directory{fsys: f, path: "/"}
}

func (f *FileSystem) Unmount() error {
	if !f.mounted {
		return ErrUnmounted
	}
	f.mounted = false
	err := f.engine.Close()
	if err != nil {
		return Fatal(err)
	}
	return nil
}
