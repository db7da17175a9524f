package driver

import (
	"github.com/rs/zerolog"
	"github.com/rstms/fatfuzz"
	"github.com/rstms/fatfuzz/fat"
)

// MountFunc constructs a filesystem handle from a raw image.
type MountFunc func(data []byte, opts fatfuzz.MountOptions) (fatfuzz.FileSystem, error)

// MountFAT mounts through the go-diskfs backed adapter.
func MountFAT(data []byte, opts fatfuzz.MountOptions) (fatfuzz.FileSystem, error) {
	fsys, err := fat.Mount(data, opts)
	if err != nil {
		return nil, err
	}
	return fsys, nil
}

// Driver exercises every operation of a mounted filesystem. It keeps no
// state between runs.
type Driver struct {
	cfg   Config
	mount MountFunc
	log   zerolog.Logger
}

type Option func(*Driver)

// WithMountFunc replaces the engine the driver mounts images with.
func WithMountFunc(fn MountFunc) Option {
	return func(d *Driver) {
		d.mount = fn
	}
}

func New(cfg Config, opts ...Option) *Driver {
	if cfg.Depth < 0 {
		cfg.Depth = 0
	}
	if cfg.ReadSize < 0 {
		cfg.ReadSize = 0
	}
	cfg.MountOptions = cfg.MountOptions.WithDefaults()
	d := &Driver{
		cfg:   cfg,
		mount: MountFAT,
		log:   cfg.Logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) Config() Config {
	return d.cfg
}
