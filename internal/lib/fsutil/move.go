package fsutil

import (
	"errors"
	"os"
	"syscall"

	"github.com/ImSingee/go-ex/ee"
)

// Rename moves oldpath to newpath, replacing newpath.
// It falls back to copy and remove across filesystems.
func Rename(oldpath, newpath string) error {
	err := os.Rename(oldpath, newpath)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || linkErr.Err != syscall.EXDEV {
		return err
	}

	return moveFile(oldpath, newpath)
}

func moveFile(oldpath, newpath string) error {
	err := CopyFile(oldpath, newpath, true)
	if err != nil {
		return ee.Wrapf(err, "rename %s -> %s: cannot copy file", oldpath, newpath)
	}
	err = os.Remove(oldpath)
	if err != nil {
		return ee.Wrapf(err, "rename %s -> %s: cannot remove old file", oldpath, newpath)
	}

	return nil
}
