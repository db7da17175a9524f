// go-common local proxy functions

package fat

import (
	"github.com/pkg/errors"
	"github.com/rstms/go-common"
)

var (
	ErrBootSector       = errors.New("invalid boot sector")
	ErrNotDirectory     = errors.New("not a directory")
	ErrNotFile          = errors.New("not a file")
	ErrForeignDirectory = errors.New("directory belongs to another filesystem")
	ErrUnmounted        = errors.New("filesystem is unmounted")
	ErrNoRootLabel      = errors.New("root directory has no volume label")
)

func Fatal(err error) error {
	return common.Fatal(err)
}

func Fatalf(format string, args ...interface{}) error {
	return common.Fatalf(format, args...)
}

// Wrapf annotates a sentinel so errors.Is still matches it.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
