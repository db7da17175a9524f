package fat

import (
	"io"
	"testing"
	"time"

	"github.com/rstms/fatfuzz"
	"github.com/stretchr/testify/require"
)

const formatSize = 10 * 1024 * 1024

func TestFileSystemImplementsFileSystem(t *testing.T) {
	var raw interface{}
	raw = new(FileSystem)
	if _, ok := raw.(fatfuzz.FileSystem); !ok {
		t.Fatal("FileSystem should be a FileSystem")
	}
}

func formatted(t *testing.T) *FileSystem {
	t.Helper()
	fsys, err := Format(NewEmptyDisk(formatSize, time.Unix(0, 0)), "FUZZ", fatfuzz.MountOptions{})
	require.Nil(t, err)
	return fsys
}

func names(t *testing.T, dir fatfuzz.Directory) []string {
	t.Helper()
	ret := []string{}
	for entry, err := range dir.Iter() {
		require.Nil(t, err)
		ret = append(ret, entry.Name())
	}
	return ret
}

func TestMountRejectsGarbage(t *testing.T) {
	_, err := Mount(nil, fatfuzz.MountOptions{})
	require.NotNil(t, err)
	_, err = Mount(make([]byte, 4096), fatfuzz.MountOptions{})
	require.NotNil(t, err)
}

func TestFormatIntrospection(t *testing.T) {
	fsys := formatted(t)
	require.Equal(t, fatfuzz.FAT32, fsys.FATType())
	require.NotZero(t, fsys.ClusterSize())

	label, err := fsys.VolumeLabel()
	require.Nil(t, err)
	require.Equal(t, "FUZZ", label)

	_, err = fsys.StatusFlags()
	require.Nil(t, err)

	stats, err := fsys.Stats()
	require.Nil(t, err)
	require.NotZero(t, stats.TotalClusters)
	require.LessOrEqual(t, stats.FreeClusters, stats.TotalClusters)
	require.Equal(t, fsys.ClusterSize(), stats.ClusterSize)

	require.Nil(t, fsys.Unmount())
}

func TestDirectoryMutations(t *testing.T) {
	fsys := formatted(t)
	root := fsys.RootDir()

	sub, err := root.CreateDir("sub")
	require.Nil(t, err)
	f, err := sub.CreateFile("hello.txt")
	require.Nil(t, err)
	_, err = f.Write([]byte("hello, fat"))
	require.Nil(t, err)
	require.Nil(t, f.Close())

	require.Contains(t, names(t, root), "sub")
	require.Contains(t, names(t, sub), "hello.txt")

	x, err := sub.CreateFile("x")
	require.Nil(t, err)
	require.Nil(t, x.Close())
	require.Nil(t, sub.Rename("x", sub, "y"))
	require.Contains(t, names(t, sub), "y")
	require.NotContains(t, names(t, sub), "x")
	require.Nil(t, sub.Remove("y"))
	require.NotContains(t, names(t, sub), "y")

	require.NotNil(t, sub.Remove("missing"))
}

func TestDirectoryEntryAccessors(t *testing.T) {
	fsys := formatted(t)
	root := fsys.RootDir()
	f, err := root.CreateFile("Long File Name.txt")
	require.Nil(t, err)
	_, err = f.Write([]byte("0123456789"))
	require.Nil(t, err)
	require.Nil(t, f.Close())
	_, err = root.CreateDir("SUB")
	require.Nil(t, err)

	seen := 0
	for entry, err := range root.Iter() {
		require.Nil(t, err)
		switch entry.Name() {
		case "Long File Name.txt":
			seen++
			require.True(t, entry.IsFile())
			require.False(t, entry.IsDir())
			require.Equal(t, uint64(10), entry.Len())
			require.NotEmpty(t, entry.ShortNameBytes())
			require.NotNil(t, entry.LongNameUCS2())
			require.True(t, entry.Attr().Has(fatfuzz.AttrArchive))
			require.True(t, entry.Created().IsZero())

			_, err := entry.Dir()
			require.ErrorIs(t, err, ErrNotDirectory)

			ef, err := entry.File()
			require.Nil(t, err)
			buf := make([]byte, 20)
			n, err := ef.Read(buf)
			if err != nil {
				require.ErrorIs(t, err, io.EOF)
			}
			require.Equal(t, "0123456789", string(buf[:n]))
			require.Nil(t, ef.Close())
		case "SUB":
			seen++
			require.True(t, entry.IsDir())
			require.True(t, entry.Attr().Has(fatfuzz.AttrDirectory))
			_, err := entry.File()
			require.ErrorIs(t, err, ErrNotFile)
			dir, err := entry.Dir()
			require.Nil(t, err)
			require.Equal(t, "/SUB", dir.(*Directory).Path())
		}
	}
	require.Equal(t, 2, seen)
}

func TestDirectoryEntryAttr(t *testing.T) {
	fsys := formatted(t)
	root := fsys.RootDir()
	f, err := root.CreateFile("short.txt")
	require.Nil(t, err)
	require.Nil(t, f.Close())
	_, err = root.CreateDir("sub")
	require.Nil(t, err)

	attrs := map[string]fatfuzz.DirectoryAttr{}
	for entry, err := range root.Iter() {
		require.Nil(t, err)
		attrs[entry.Name()] = entry.Attr()
		if entry.Name() == "short.txt" {
			require.Nil(t, entry.LongNameUCS2())
		}
	}
	require.Equal(t, fatfuzz.AttrArchive, attrs["short.txt"])
	require.Equal(t, fatfuzz.AttrDirectory, attrs["sub"])
	require.False(t, attrs["short.txt"].Has(fatfuzz.AttrReadOnly))
}

func TestRemountSeesChanges(t *testing.T) {
	fsys := formatted(t)
	_, err := fsys.RootDir().CreateDir("keep")
	require.Nil(t, err)
	image := append([]byte(nil), fsys.Disk().Bytes()...)
	require.Nil(t, fsys.Unmount())

	again, err := Mount(image, fatfuzz.MountOptions{})
	require.Nil(t, err)
	require.Contains(t, names(t, again.RootDir()), "keep")
	require.Nil(t, again.Unmount())
}

func TestRenameForeignDirectory(t *testing.T) {
	a := formatted(t)
	b := formatted(t)
	err := a.RootDir().Rename("x", b.RootDir(), "y")
	require.ErrorIs(t, err, ErrForeignDirectory)
}

func TestUnmount(t *testing.T) {
	fsys := formatted(t)
	root := fsys.RootDir()
	f, err := root.CreateFile("open.txt")
	require.Nil(t, err)

	require.Nil(t, fsys.Unmount())
	require.ErrorIs(t, fsys.Unmount(), ErrUnmounted)

	for _, err := range root.Iter() {
		require.ErrorIs(t, err, ErrUnmounted)
	}
	_, err = f.Write([]byte("late"))
	require.ErrorIs(t, err, ErrUnmounted)
	_, err = root.CreateFile("late.txt")
	require.ErrorIs(t, err, ErrUnmounted)
	_, err = fsys.Stats()
	require.ErrorIs(t, err, ErrUnmounted)
}
