package fsutil

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ImSingee/go-ex/ee"
)

// CopyFile copies the content and mode of from into to.
// An existing destination is truncated only when force is set.
func CopyFile(from, to string, force bool) error {
	from = filepath.Clean(from)
	to = filepath.Clean(to)
	if from == to {
		return nil
	}

	fromF, err := os.Open(from)
	if err != nil {
		return ee.Wrapf(err, "cannot open source file %s", from)
	}
	defer fromF.Close()

	stat, err := fromF.Stat()
	if err != nil {
		return ee.Wrapf(err, "cannot stat source file %s", from)
	}
	if stat.IsDir() {
		return ee.Errorf("cannot copy %s: is a directory", from)
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	toF, err := os.OpenFile(to, flag, stat.Mode().Perm())
	if err != nil {
		return ee.Wrapf(err, "cannot open destination file %s", to)
	}
	defer toF.Close()

	_, err = io.Copy(toF, fromF)
	if err != nil {
		return ee.Wrapf(err, "cannot copy data from %s to %s", from, to)
	}

	err = toF.Close()
	if err != nil {
		return ee.Wrapf(err, "cannot save and close file %s", to)
	}

	return nil
}
