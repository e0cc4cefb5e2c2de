package fsutil

import (
	"os"
	"path/filepath"

	"github.com/ImSingee/go-ex/ee"
)

// MkdirFor creates the parent directory of file and returns its absolute path
func MkdirFor(file string) (string, error) {
	d, err := filepath.Abs(file)
	if err != nil {
		return "", ee.Wrapf(err, "cannot get absolute path of %s", file)
	}

	d = filepath.Dir(d)

	err = os.MkdirAll(d, 0755)
	if err != nil {
		return "", ee.Wrapf(err, "cannot create directory %s", d)
	}

	return d, nil
}

func IsFile(p string) (bool, error) {
	stat, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return stat.Mode().IsRegular(), nil
}
