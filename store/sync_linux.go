package store

import (
	"os"

	"golang.org/x/sys/unix"
)

//datasync flushes file data, but not all the metadata, to stable storage.
func datasync(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
