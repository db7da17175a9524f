package driver

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rstms/fatfuzz"
)

const (
	DefaultDepth    = 64
	DefaultReadSize = 20
)

// Config bounds one invocation. Depth is the directory budget handed to
// the walker for the root; ReadSize is the buffer read from and written
// back to every file.
type Config struct {
	Depth        int
	ReadSize     int
	MountOptions fatfuzz.MountOptions
	Logger       zerolog.Logger
}

func DefaultConfig() Config {
	return Config{
		Depth:        DefaultDepth,
		ReadSize:     DefaultReadSize,
		MountOptions: fatfuzz.DefaultMountOptions(),
		Logger:       zerolog.Nop(),
	}
}

// LoggerFromEnv returns a console logger on stderr at the level named by
// FATFUZZ_LOG, or a disabled logger when it is unset or unparseable.
func LoggerFromEnv() zerolog.Logger {
	name := os.Getenv("FATFUZZ_LOG")
	if name == "" {
		return zerolog.Nop()
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
		Level(level).
		With().Str("component", "fatfuzz").Logger()
}
