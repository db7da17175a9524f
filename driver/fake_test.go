package driver

import (
	"errors"
	"io"
	"iter"
	"time"

	"github.com/rstms/fatfuzz"
)

var errFake = errors.New("fake failure")

// fakeFS is an in-memory engine whose directory graph is wired by hand, so
// tests can build cycles and arbitrarily deep chains.
type fakeFS struct {
	root       *fakeDir
	unmountErr error
	unmounted  int
	introspect map[string]int
	handles    int
}

type fakeOp struct {
	op     string
	handle int
}

type fakeDir struct {
	fsys       *fakeFS
	name       string
	entries    []*fakeEntry
	failAt     int
	failCreate bool
	failRename bool
	failRemove bool
	panicIter  bool
	iterations int
	ops        []fakeOp
}

type fakeEntry struct {
	name    string
	dir     *fakeDir
	data    []byte
	inspect int
	opened  int
	written [][]byte
}

type fakeHandle struct {
	dir *fakeDir
	id  int
}

type fakeFile struct {
	entry *fakeEntry
	pos   int
}

func newFakeFS() *fakeFS {
	f := &fakeFS{introspect: map[string]int{}}
	f.root = f.newDir("/")
	return f
}

func (f *fakeFS) newDir(name string) *fakeDir {
	return &fakeDir{fsys: f, name: name, failAt: -1}
}

func (f *fakeFS) handle(d *fakeDir) *fakeHandle {
	f.handles++
	return &fakeHandle{dir: d, id: f.handles}
}

func (f *fakeFS) mountFunc() MountFunc {
	return func(data []byte, opts fatfuzz.MountOptions) (fatfuzz.FileSystem, error) {
		if len(data) == 0 {
			return nil, errFake
		}
		return f, nil
	}
}

func (d *fakeDir) addDir(name string, child *fakeDir) *fakeEntry {
	e := &fakeEntry{name: name, dir: child}
	d.entries = append(d.entries, e)
	return e
}

func (d *fakeDir) addFile(name string, data []byte) *fakeEntry {
	e := &fakeEntry{name: name, data: data}
	d.entries = append(d.entries, e)
	return e
}

func (d *fakeDir) opNames() []string {
	ret := []string{}
	for _, op := range d.ops {
		ret = append(ret, op.op)
	}
	return ret
}

func (f *fakeFS) count(name string) {
	f.introspect[name]++
}

func (f *fakeFS) FATType() fatfuzz.FATType {
	f.count("type")
	return fatfuzz.FAT32
}

func (f *fakeFS) VolumeID() uint32 {
	f.count("id")
	return 1
}

func (f *fakeFS) VolumeLabelBytes() []byte {
	f.count("label bytes")
	return []byte("FAKE")
}

func (f *fakeFS) VolumeLabel() (string, error) {
	f.count("label")
	return "", errFake
}

func (f *fakeFS) RootVolumeLabelBytes() ([]byte, error) {
	f.count("root label bytes")
	return nil, errFake
}

func (f *fakeFS) RootVolumeLabel() (string, error) {
	f.count("root label")
	return "", errFake
}

func (f *fakeFS) ClusterSize() uint32 {
	f.count("cluster size")
	return 512
}

func (f *fakeFS) StatusFlags() (fatfuzz.StatusFlags, error) {
	f.count("status")
	return fatfuzz.StatusFlags{}, errFake
}

func (f *fakeFS) Stats() (fatfuzz.FileSystemStats, error) {
	f.count("stats")
	return fatfuzz.FileSystemStats{}, errFake
}

func (f *fakeFS) RootDir() fatfuzz.Directory {
	return f.handle(f.root)
}

func (f *fakeFS) Unmount() error {
	f.unmounted++
	return f.unmountErr
}

func (h *fakeHandle) record(op string) {
	h.dir.ops = append(h.dir.ops, fakeOp{op: op, handle: h.id})
}

func (h *fakeHandle) Iter() iter.Seq2[fatfuzz.DirectoryEntry, error] {
	return func(yield func(fatfuzz.DirectoryEntry, error) bool) {
		d := h.dir
		if d.panicIter {
			panic("corrupt directory")
		}
		d.iterations++
		h.record("iter")
		for i, e := range d.entries {
			if i == d.failAt {
				yield(nil, errFake)
				return
			}
			if !yield(&fakeEntryHandle{fsys: d.fsys, e: e}, nil) {
				return
			}
		}
	}
}

func (h *fakeHandle) CreateFile(name string) (fatfuzz.File, error) {
	if h.dir.failCreate {
		return nil, errFake
	}
	h.record("create " + name)
	return &fakeFile{entry: &fakeEntry{name: name}}, nil
}

func (h *fakeHandle) CreateDir(name string) (fatfuzz.Directory, error) {
	return nil, errFake
}

func (h *fakeHandle) Rename(src string, dst fatfuzz.Directory, dstName string) error {
	if h.dir.failRename {
		return errFake
	}
	if dst.(*fakeHandle) != h {
		h.record("rename to other handle")
	}
	h.record("rename " + src + " " + dstName)
	return nil
}

func (h *fakeHandle) Remove(name string) error {
	if h.dir.failRemove {
		return errFake
	}
	h.record("remove " + name)
	return nil
}

type fakeEntryHandle struct {
	fsys *fakeFS
	e    *fakeEntry
}

func (h *fakeEntryHandle) touch() { h.e.inspect++ }

func (h *fakeEntryHandle) ShortNameBytes() []byte      { h.touch(); return []byte(h.e.name) }
func (h *fakeEntryHandle) LongNameUCS2() []uint16      { h.touch(); return nil }
func (h *fakeEntryHandle) Name() string                { h.touch(); return h.e.name }
func (h *fakeEntryHandle) ShortName() string           { h.touch(); return h.e.name }
func (h *fakeEntryHandle) Attr() fatfuzz.DirectoryAttr { h.touch(); return 0 }
func (h *fakeEntryHandle) Len() uint64                 { h.touch(); return uint64(len(h.e.data)) }
func (h *fakeEntryHandle) Created() time.Time          { h.touch(); return time.Time{} }
func (h *fakeEntryHandle) Accessed() time.Time         { h.touch(); return time.Time{} }
func (h *fakeEntryHandle) Modified() time.Time         { h.touch(); return time.Time{} }
func (h *fakeEntryHandle) IsDir() bool                 { return h.e.dir != nil }
func (h *fakeEntryHandle) IsFile() bool                { return h.e.dir == nil }

func (h *fakeEntryHandle) Dir() (fatfuzz.Directory, error) {
	if h.e.dir == nil {
		return nil, errFake
	}
	return h.fsys.handle(h.e.dir), nil
}

func (h *fakeEntryHandle) File() (fatfuzz.File, error) {
	if h.e.dir != nil {
		return nil, errFake
	}
	h.e.opened++
	return &fakeFile{entry: h.e}, nil
}

func (f *fakeFile) Read(p []byte) (int, error) {
	if f.pos >= len(f.entry.data) {
		return 0, io.EOF
	}
	n := copy(p, f.entry.data[f.pos:])
	f.pos += n
	return n, nil
}

func (f *fakeFile) Write(p []byte) (int, error) {
	f.entry.written = append(f.entry.written, append([]byte(nil), p...))
	f.pos += len(p)
	return len(p), nil
}

func (f *fakeFile) Seek(offset int64, whence int) (int64, error) {
	return 0, errFake
}

func (f *fakeFile) Close() error {
	return nil
}
