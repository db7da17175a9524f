package driver

import (
	"github.com/rstms/fatfuzz"
)

// Run mounts data and, if the image is accepted, calls every volume
// accessor, walks the tree from the root and unmounts. A rejected image
// is returned as an error and is not a defect. Results of the accessors
// are discarded; only a panic inside the engine signals a finding.
func (d *Driver) Run(data []byte) error {
	fsys, err := d.mount(data, d.cfg.MountOptions)
	if err != nil {
		d.log.Debug().Int("size", len(data)).Err(err).Msg("mount rejected")
		return err
	}
	d.log.Debug().Int("size", len(data)).Msg("mounted")

	d.Introspect(fsys)

	_ = d.Walk(fsys.RootDir(), d.cfg.Depth)

	err = fsys.Unmount()
	if err != nil {
		d.log.Debug().Err(err).Msg("unmount failed")
		return err
	}
	return nil
}

// Introspect calls each volume metadata accessor once and discards the
// results, including errors.
func (d *Driver) Introspect(fsys fatfuzz.FileSystem) {
	_ = fsys.FATType()
	_ = fsys.VolumeID()
	_ = fsys.VolumeLabelBytes()
	_ = fsys.ClusterSize()
	_, _ = fsys.StatusFlags()
	_, _ = fsys.Stats()
	_, _ = fsys.VolumeLabel()
	_, _ = fsys.RootVolumeLabel()
	_, _ = fsys.RootVolumeLabelBytes()
}
