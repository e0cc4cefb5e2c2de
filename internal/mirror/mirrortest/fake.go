// Package mirrortest provides an in-memory mirror.PrivilegedFS.
package mirrortest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FakeFS keeps the remote side in memory. Sources outside of it are read from disk.
type FakeFS struct {
	// MountErrs is consumed by successive Mount calls; a nil entry or an exhausted list succeeds
	MountErrs  []error
	UnmountErr error
	// FailCopy, when set, may fail a copy before it happens
	FailCopy func(src, dst string) error

	Calls   []string
	Files   map[string][]byte
	Dirs    map[string]bool
	Secrets map[string][]byte
	Mounted bool
}

func New() *FakeFS {
	return &FakeFS{
		Files:   map[string][]byte{},
		Dirs:    map[string]bool{},
		Secrets: map[string][]byte{},
	}
}

func (f *FakeFS) record(format string, args ...any) {
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

func (f *FakeFS) Mount(ctx context.Context, url, mountPoint string) error {
	f.record("mount %s %s", url, mountPoint)

	if len(f.MountErrs) != 0 {
		err := f.MountErrs[0]
		f.MountErrs = f.MountErrs[1:]
		if err != nil {
			return err
		}
	}

	if !f.Dirs[filepath.Clean(mountPoint)] {
		return fmt.Errorf("mount point %s does not exist", mountPoint)
	}

	f.Mounted = true
	return nil
}

func (f *FakeFS) Unmount(ctx context.Context, mountPoint string) error {
	f.record("umount %s", mountPoint)

	if f.UnmountErr != nil {
		return f.UnmountErr
	}
	if !f.Mounted {
		return fmt.Errorf("%s: not mounted", mountPoint)
	}

	f.Mounted = false
	return nil
}

func (f *FakeFS) MkdirAll(ctx context.Context, dir string) error {
	f.record("mkdir %s", dir)

	for d := filepath.Clean(dir); ; d = filepath.Dir(d) {
		f.Dirs[d] = true
		if d == filepath.Dir(d) {
			break
		}
	}
	return nil
}

func (f *FakeFS) CopyFile(ctx context.Context, src, dst string) error {
	f.record("cp %s %s", src, dst)

	if f.FailCopy != nil {
		if err := f.FailCopy(src, dst); err != nil {
			return err
		}
	}
	if !f.Mounted {
		return fmt.Errorf("cannot copy to %s: not mounted", dst)
	}
	if !f.Dirs[filepath.Dir(filepath.Clean(dst))] {
		return fmt.Errorf("cannot copy to %s: no such directory", dst)
	}

	data, ok := f.Files[filepath.Clean(src)]
	if !ok {
		var err error
		data, err = os.ReadFile(src)
		if err != nil {
			return err
		}
	}

	f.Files[filepath.Clean(dst)] = data
	return nil
}

// CopyDir behaves like `cp -r src/. dst`.
func (f *FakeFS) CopyDir(ctx context.Context, src, dst string) error {
	f.record("cpdir %s %s", src, dst)

	if f.FailCopy != nil {
		if err := f.FailCopy(src, dst); err != nil {
			return err
		}
	}
	if !f.Mounted {
		return fmt.Errorf("cannot copy to %s: not mounted", dst)
	}

	src, dst = filepath.Clean(src), filepath.Clean(dst)
	if !f.Dirs[src] {
		return fmt.Errorf("cannot copy %s: no such directory", src)
	}
	if !f.Dirs[dst] {
		return fmt.Errorf("cannot copy to %s: no such directory", dst)
	}

	var dirs []string
	for d := range f.Dirs {
		if rel, ok := below(src, d); ok {
			dirs = append(dirs, filepath.Join(dst, rel))
		}
	}
	files := map[string][]byte{}
	for p, data := range f.Files {
		if rel, ok := below(src, p); ok {
			files[filepath.Join(dst, rel)] = data
		}
	}

	for _, d := range dirs {
		f.Dirs[d] = true
	}
	for p, data := range files {
		f.Files[p] = data
	}
	return nil
}

func below(dir, p string) (string, bool) {
	prefix := dir + string(filepath.Separator)
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return p[len(prefix):], true
}

// Seed puts a file on the remote side as if an earlier run had left it there.
func (f *FakeFS) Seed(p string, data []byte) {
	p = filepath.Clean(p)
	f.Files[p] = data
	for d := filepath.Dir(p); ; d = filepath.Dir(d) {
		f.Dirs[d] = true
		if d == filepath.Dir(d) {
			break
		}
	}
}

func (f *FakeFS) WriteSecrets(ctx context.Context, path string, content []byte) error {
	f.record("secrets %s", path)

	f.Secrets[path] = content
	return nil
}

// List returns the sorted names of files directly inside dir.
func (f *FakeFS) List(dir string) []string {
	dir = filepath.Clean(dir)

	var names []string
	for p := range f.Files {
		if filepath.Dir(p) == dir {
			names = append(names, filepath.Base(p))
		}
	}
	sort.Strings(names)
	return names
}

// Subdirs returns the sorted names of directories directly inside dir.
func (f *FakeFS) Subdirs(dir string) []string {
	dir = filepath.Clean(dir)

	var names []string
	for d := range f.Dirs {
		if d != dir && filepath.Dir(d) == dir {
			names = append(names, filepath.Base(d))
		}
	}
	sort.Strings(names)
	return names
}

// CallsWithPrefix filters Calls by their leading word.
func (f *FakeFS) CallsWithPrefix(prefix string) []string {
	var calls []string
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix+" ") {
			calls = append(calls, c)
		}
	}
	return calls
}
