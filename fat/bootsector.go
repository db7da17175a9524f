package fat

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/go-restruct/restruct"
	"github.com/rstms/fatfuzz"
)

const (
	bootSectorSize   = 512
	commonBPBSize    = 36
	extendedBPBSize  = 26
	fat32BPBSize     = 54
	maxFAT12Clusters = 4084
	maxFAT16Clusters = 65524
	maxFAT32Clusters = 0x0ffffff4

	fsInfoLeadSignature   = 0x41615252
	fsInfoStructSignature = 0x61417272
	fsInfoTrailSignature  = 0xaa550000
)

// BIOSParameterBlock is the part of the boot sector shared by every FAT
// variant.
type BIOSParameterBlock struct {
	JumpBoot          [3]byte
	OEMName           [8]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntries       uint16
	TotalSectors16    uint16
	Media             uint8
	FATSize16         uint16
	SectorsPerTrack   uint16
	NumHeads          uint16
	HiddenSectors     uint32
	TotalSectors32    uint32
}

// ExtendedBPB follows the common block on FAT12/16 and the FAT32 block on
// FAT32.
type ExtendedBPB struct {
	DriveNumber   uint8
	Reserved1     uint8
	BootSignature uint8
	VolumeID      uint32
	VolumeLabel   [11]byte
	FSType        [8]byte
}

type FAT32BPB struct {
	FATSize32        uint32
	ExtFlags         uint16
	FSVersion        uint16
	RootCluster      uint32
	FSInfoSector     uint16
	BackupBootSector uint16
	Reserved         [12]byte
	Ext              ExtendedBPB
}

// BootSector is a decoded and validated boot sector along with the volume
// geometry derived from it.
type BootSector struct {
	BPB   BIOSParameterBlock
	Ext   ExtendedBPB
	FAT32 *FAT32BPB

	fatType         fatfuzz.FATType
	totalSectors    uint64
	fatSectors      uint64
	firstDataSector uint64
	clusterCount    uint64
}

func isPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// DecodeBootSector reads and validates the boot sector at the start of r.
func DecodeBootSector(r io.ReaderAt) (*BootSector, error) {
	raw := make([]byte, bootSectorSize)
	if _, err := r.ReadAt(raw, 0); err != nil {
		return nil, Wrapf(ErrBootSector, "read: %v", err)
	}
	if raw[510] != 0x55 || raw[511] != 0xaa {
		return nil, Wrapf(ErrBootSector, "missing signature")
	}

	bs := BootSector{}
	if err := restruct.Unpack(raw[:commonBPBSize], binary.LittleEndian, &bs.BPB); err != nil {
		return nil, Fatal(err)
	}
	bpb := &bs.BPB

	if !isPowerOfTwo(uint64(bpb.BytesPerSector)) || bpb.BytesPerSector < 512 || bpb.BytesPerSector > 4096 {
		return nil, Wrapf(ErrBootSector, "bytes per sector %d", bpb.BytesPerSector)
	}
	if !isPowerOfTwo(uint64(bpb.SectorsPerCluster)) {
		return nil, Wrapf(ErrBootSector, "sectors per cluster %d", bpb.SectorsPerCluster)
	}
	if bpb.NumFATs == 0 {
		return nil, Wrapf(ErrBootSector, "no FATs")
	}
	if bpb.ReservedSectors == 0 {
		return nil, Wrapf(ErrBootSector, "no reserved sectors")
	}

	if bpb.FATSize16 == 0 {
		bs.FAT32 = new(FAT32BPB)
		if err := restruct.Unpack(raw[commonBPBSize:commonBPBSize+fat32BPBSize], binary.LittleEndian, bs.FAT32); err != nil {
			return nil, Fatal(err)
		}
		bs.Ext = bs.FAT32.Ext
		bs.fatSectors = uint64(bs.FAT32.FATSize32)
	} else {
		if err := restruct.Unpack(raw[commonBPBSize:commonBPBSize+extendedBPBSize], binary.LittleEndian, &bs.Ext); err != nil {
			return nil, Fatal(err)
		}
		bs.fatSectors = uint64(bpb.FATSize16)
	}
	if bs.fatSectors == 0 {
		return nil, Wrapf(ErrBootSector, "zero FAT size")
	}

	bs.totalSectors = uint64(bpb.TotalSectors16)
	if bs.totalSectors == 0 {
		bs.totalSectors = uint64(bpb.TotalSectors32)
	}

	bps := uint64(bpb.BytesPerSector)
	rootDirSectors := (uint64(bpb.RootEntries)*32 + bps - 1) / bps
	bs.firstDataSector = uint64(bpb.ReservedSectors) + uint64(bpb.NumFATs)*bs.fatSectors + rootDirSectors
	if bs.firstDataSector >= bs.totalSectors {
		return nil, Wrapf(ErrBootSector, "data region starts at sector %d of %d", bs.firstDataSector, bs.totalSectors)
	}
	bs.clusterCount = (bs.totalSectors - bs.firstDataSector) / uint64(bpb.SectorsPerCluster)

	// The BPB layout decides FAT32; the cluster count separates FAT12 from
	// FAT16.
	switch {
	case bs.FAT32 != nil && bs.clusterCount <= maxFAT32Clusters:
		bs.fatType = fatfuzz.FAT32
	case bs.FAT32 != nil:
		return nil, Wrapf(ErrBootSector, "%d clusters", bs.clusterCount)
	case bs.clusterCount <= maxFAT12Clusters:
		bs.fatType = fatfuzz.FAT12
	case bs.clusterCount <= maxFAT16Clusters:
		bs.fatType = fatfuzz.FAT16
	default:
		return nil, Wrapf(ErrBootSector, "%d clusters with a FAT16 layout", bs.clusterCount)
	}

	return &bs, nil
}

func (bs *BootSector) FATType() fatfuzz.FATType {
	return bs.fatType
}

func (bs *BootSector) ClusterSize() uint32 {
	return uint32(bs.BPB.SectorsPerCluster) * uint32(bs.BPB.BytesPerSector)
}

func (bs *BootSector) ClusterCount() uint32 {
	return uint32(bs.clusterCount)
}

// VolumeLabelBytes returns the boot sector label without trailing padding.
func (bs *BootSector) VolumeLabelBytes() []byte {
	return bytes.TrimRight(bs.Ext.VolumeLabel[:], " \x00")
}

func (bs *BootSector) fatOffset() int64 {
	return int64(bs.BPB.ReservedSectors) * int64(bs.BPB.BytesPerSector)
}

func (bs *BootSector) fatLength() int64 {
	return int64(bs.fatSectors) * int64(bs.BPB.BytesPerSector)
}

func readUint(r io.ReaderAt, off int64, size int) (uint32, error) {
	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, off); err != nil {
		return 0, Fatalf("read %d bytes at %d: %v", size, off, err)
	}
	if size == 2 {
		return uint32(binary.LittleEndian.Uint16(buf)), nil
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// StatusFlags combines the BPB dirty bit with the shutdown and hard error
// bits of FAT entry 1. FAT12 keeps no bits in the FAT.
func (bs *BootSector) StatusFlags(r io.ReaderAt) (fatfuzz.StatusFlags, error) {
	flags := fatfuzz.StatusFlags{Dirty: bs.Ext.Reserved1&1 != 0}
	switch bs.fatType {
	case fatfuzz.FAT16:
		v, err := readUint(r, bs.fatOffset()+2, 2)
		if err != nil {
			return flags, Fatal(err)
		}
		flags.Dirty = flags.Dirty || v&0x8000 == 0
		flags.IOError = v&0x4000 == 0
	case fatfuzz.FAT32:
		v, err := readUint(r, bs.fatOffset()+4, 4)
		if err != nil {
			return flags, Fatal(err)
		}
		flags.Dirty = flags.Dirty || v&0x08000000 == 0
		flags.IOError = v&0x04000000 == 0
	}
	return flags, nil
}

// Stats reports cluster usage, trusting the FAT32 FSInfo free count when it
// is present and plausible.
func (bs *BootSector) Stats(r io.ReaderAt, size int64) (fatfuzz.FileSystemStats, error) {
	stats := fatfuzz.FileSystemStats{
		ClusterSize:   bs.ClusterSize(),
		TotalClusters: bs.ClusterCount(),
	}
	if free, ok := bs.fsInfoFreeCount(r); ok {
		stats.FreeClusters = free
		return stats, nil
	}
	free, err := bs.countFreeClusters(r, size)
	if err != nil {
		return stats, Fatal(err)
	}
	stats.FreeClusters = free
	return stats, nil
}

func (bs *BootSector) fsInfoFreeCount(r io.ReaderAt) (uint32, bool) {
	if bs.FAT32 == nil {
		return 0, false
	}
	sector := bs.FAT32.FSInfoSector
	if sector == 0 || sector >= bs.BPB.ReservedSectors {
		return 0, false
	}
	raw := make([]byte, bootSectorSize)
	if _, err := r.ReadAt(raw, int64(sector)*int64(bs.BPB.BytesPerSector)); err != nil {
		return 0, false
	}
	le := binary.LittleEndian
	if le.Uint32(raw[0:]) != fsInfoLeadSignature ||
		le.Uint32(raw[484:]) != fsInfoStructSignature ||
		le.Uint32(raw[508:]) != fsInfoTrailSignature {
		return 0, false
	}
	free := le.Uint32(raw[488:])
	if uint64(free) > bs.clusterCount {
		return 0, false
	}
	return free, true
}

func (bs *BootSector) countFreeClusters(r io.ReaderAt, size int64) (uint32, error) {
	off, length := bs.fatOffset(), bs.fatLength()
	if off+length > size {
		return 0, Fatalf("FAT at %d+%d extends past end of volume (%d)", off, length, size)
	}
	table := make([]byte, length)
	if _, err := r.ReadAt(table, off); err != nil {
		return 0, Fatal(err)
	}

	var free uint32
	last := bs.clusterCount + 1
	for cluster := uint64(2); cluster <= last; cluster++ {
		entry, ok := fatEntry(bs.fatType, table, cluster)
		if !ok {
			break
		}
		if entry == 0 {
			free++
		}
	}
	return free, nil
}

// fatEntry returns the table entry for cluster, or false when the table
// is too short to hold it.
func fatEntry(t fatfuzz.FATType, table []byte, cluster uint64) (uint32, bool) {
	le := binary.LittleEndian
	switch t {
	case fatfuzz.FAT12:
		i := cluster + cluster/2
		if i+2 > uint64(len(table)) {
			return 0, false
		}
		v := uint32(le.Uint16(table[i:]))
		if cluster&1 == 1 {
			return v >> 4, true
		}
		return v & 0x0fff, true
	case fatfuzz.FAT16:
		i := cluster * 2
		if i+2 > uint64(len(table)) {
			return 0, false
		}
		return uint32(le.Uint16(table[i:])), true
	default:
		i := cluster * 4
		if i+4 > uint64(len(table)) {
			return 0, false
		}
		return le.Uint32(table[i:]) & 0x0fffffff, true
	}
}

// RootLabelBytes scans the root directory for a volume id entry. Only the
// fixed root region (FAT12/16) or the first root cluster (FAT32) is
// searched.
func (bs *BootSector) RootLabelBytes(r io.ReaderAt, size int64) ([]byte, error) {
	bps := int64(bs.BPB.BytesPerSector)
	var off, length int64
	if bs.FAT32 != nil {
		cluster := int64(bs.FAT32.RootCluster)
		if cluster < 2 || uint64(cluster) > bs.clusterCount+1 {
			return nil, Fatalf("root cluster %d out of range", cluster)
		}
		off = (int64(bs.firstDataSector) + (cluster-2)*int64(bs.BPB.SectorsPerCluster)) * bps
		length = int64(bs.ClusterSize())
	} else {
		off = (int64(bs.BPB.ReservedSectors) + int64(bs.BPB.NumFATs)*int64(bs.fatSectors)) * bps
		length = int64(bs.BPB.RootEntries) * 32
	}
	if off+length > size {
		return nil, Fatalf("root directory at %d+%d extends past end of volume (%d)", off, length, size)
	}
	region := make([]byte, length)
	if _, err := r.ReadAt(region, off); err != nil {
		return nil, Fatal(err)
	}

	for i := 0; i+32 <= len(region); i += 32 {
		entry := region[i : i+32]
		switch {
		case entry[0] == 0x00:
			return nil, ErrNoRootLabel
		case entry[0] == 0xe5:
			continue
		}
		attr := fatfuzz.DirectoryAttr(entry[11])
		if attr&fatfuzz.AttrLongName == fatfuzz.AttrLongName {
			continue
		}
		if attr.Has(fatfuzz.AttrVolumeId) {
			return bytes.TrimRight(entry[:11], " \x00"), nil
		}
	}
	return nil, ErrNoRootLabel
}
