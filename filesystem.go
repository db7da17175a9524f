package fatfuzz

import "fmt"

// FATType is the FAT variant of a mounted volume, derived from its cluster count.
type FATType uint8

const (
	FAT12 FATType = iota + 12
	FAT16
	FAT32
)

func (t FATType) String() string {
	switch t {
	case FAT12:
		return "FAT12"
	case FAT16:
		return "FAT16"
	case FAT32:
		return "FAT32"
	}
	return fmt.Sprintf("FATType(%d)", uint8(t))
}

// StatusFlags reports the volume state bits kept in the boot sector and
// in the second FAT entry.
type StatusFlags struct {
	Dirty   bool
	IOError bool
}

// FileSystemStats holds aggregate usage of a volume.
type FileSystemStats struct {
	ClusterSize   uint32
	TotalClusters uint32
	FreeClusters  uint32
}

// A FileSystem provides access to a tree hierarchy of directories
// and files along with the volume metadata.
type FileSystem interface {
	FATType() FATType
	VolumeID() uint32
	// VolumeLabelBytes returns the label stored in the boot sector.
	VolumeLabelBytes() []byte
	VolumeLabel() (string, error)
	// RootVolumeLabelBytes returns the label stored as a volume id entry
	// in the root directory.
	RootVolumeLabelBytes() ([]byte, error)
	RootVolumeLabel() (string, error)
	ClusterSize() uint32
	StatusFlags() (StatusFlags, error)
	Stats() (FileSystemStats, error)

	// RootDir returns the single root directory.
	RootDir() Directory

	// Unmount flushes and releases the filesystem. The handle must not be
	// used afterwards.
	Unmount() error
}
