package driver

import (
	"github.com/rstms/fatfuzz"
)

// Walk enumerates dir and exercises each entry, descending into
// subdirectories with one less unit of depth. A depth of zero returns
// without touching dir, so the walk terminates whatever shape the
// directory graph has, cycles included.
//
// The returned error is the enumeration failure that stopped this pass
// early, if any. It never carries failures of individual operations.
func (d *Driver) Walk(dir fatfuzz.Directory, depth int) error {
	if depth <= 0 {
		return nil
	}
	for entry, err := range dir.Iter() {
		if err != nil {
			d.log.Debug().Int("depth", depth).Err(err).Msg("enumeration stopped")
			return err
		}
		d.inspect(entry, depth)

		if entry.IsFile() {
			d.exerciseFile(entry)
		}
		if entry.IsDir() {
			d.exerciseDir(entry, depth)
		}
	}
	return nil
}

func (d *Driver) inspect(entry fatfuzz.DirectoryEntry, depth int) {
	_ = entry.ShortNameBytes()
	_ = entry.LongNameUCS2()
	name := entry.Name()
	attr := entry.Attr()
	_ = entry.Len()
	_ = entry.Created()
	_ = entry.Accessed()
	_ = entry.Modified()
	d.log.Trace().Int("depth", depth).Str("name", name).Uint8("attr", uint8(attr)).Msg("entry")
}

// exerciseFile reads up to ReadSize bytes and writes the same buffer back
// at the resulting position.
func (d *Driver) exerciseFile(entry fatfuzz.DirectoryEntry) {
	f, err := entry.File()
	if err != nil {
		return
	}
	defer f.Close()

	buf := make([]byte, d.cfg.ReadSize)
	_, _ = f.Read(buf)
	_, _ = f.Write(buf)
}

// exerciseDir creates, renames and removes a file inside the child and
// then descends into that same child. The first failing step ends the
// work on this entry only.
func (d *Driver) exerciseDir(entry fatfuzz.DirectoryEntry, depth int) {
	child, err := entry.Dir()
	if err != nil {
		return
	}

	f, err := child.CreateFile("x")
	if err != nil {
		d.log.Trace().Str("dir", entry.Name()).Err(err).Msg("create failed")
		return
	}
	_ = f.Close()
	if err := child.Rename("x", child, "y"); err != nil {
		d.log.Trace().Str("dir", entry.Name()).Err(err).Msg("rename failed")
		return
	}
	if err := child.Remove("y"); err != nil {
		d.log.Trace().Str("dir", entry.Name()).Err(err).Msg("remove failed")
		return
	}

	_ = d.Walk(child, depth-1)
}
