// Package mirror copies retained versions onto a mounted remote filesystem.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/pp"

	"github.com/ImSingee/relsync/internal/config"
	"github.com/ImSingee/relsync/internal/fileset"
	"github.com/ImSingee/relsync/internal/lib/fsutil"
)

// PrivilegedFS is everything the mirror needs from the host.
// All paths on the remote side are below the mount point.
type PrivilegedFS interface {
	Mount(ctx context.Context, url, mountPoint string) error
	Unmount(ctx context.Context, mountPoint string) error
	MkdirAll(ctx context.Context, dir string) error
	CopyFile(ctx context.Context, src, dst string) error
	// CopyDir copies everything inside src into dst, merging with what dst already holds
	CopyDir(ctx context.Context, src, dst string) error
	WriteSecrets(ctx context.Context, path string, content []byte) error
}

var ErrMountFailed = ee.New("cannot mount remote filesystem")

type Options struct {
	MountPoint  string
	SecretsFile string
	// SourceDir holds the grouped files
	SourceDir   string
	Credentials config.Credentials

	ShowProgress bool
}

type Mirror struct {
	fs    PrivilegedFS
	opts  Options
	state State
}

func New(fs PrivilegedFS, opts Options) *Mirror {
	if opts.SourceDir == "" {
		opts.SourceDir = "."
	}

	return &Mirror{fs: fs, opts: opts, state: StateUnconfigured}
}

func (m *Mirror) State() State {
	return m.state
}

// Report describes what an upload did.
type Report struct {
	// Uploaded maps each version to the files copied into its directory
	Uploaded map[string][]string
	// Missing lists grouped files that were gone from the source directory
	Missing []string
	// Unmounted is false when the unmount command failed
	Unmounted  bool
	UnmountErr error
}

// Run mounts the remote filesystem, uploads versions of set and unmounts again.
//
// versions is in retention order, greatest first. Versions are uploaded in the reverse order,
// so when two versions have a file of the same name the greatest one ends up in the mount root.
//
// Once mounting has been attempted, unmount runs exactly once however Run ends,
// and its failure never changes the returned error.
func (m *Mirror) Run(ctx context.Context, set fileset.VersionFileSet, versions []string) (report *Report, err error) {
	if m.state != StateUnconfigured {
		return nil, ee.Errorf("mirror already used (state = %s)", m.state)
	}

	if err := m.opts.Credentials.Validate(); err != nil {
		return nil, err
	}

	report = &Report{Uploaded: map[string][]string{}}

	m.state = StateMounting
	defer func() {
		report.UnmountErr = m.unmount(ctx)
		report.Unmounted = report.UnmountErr == nil
	}()

	if err := m.mount(ctx); err != nil {
		m.state = StateFailed
		return report, err
	}
	m.state = StateMounted

	m.state = StateUploading
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		if err := m.uploadVersion(ctx, report, v, set.Files(v)); err != nil {
			m.state = StateFailed
			return report, ee.Wrapf(err, "cannot upload version %s", v)
		}
	}
	m.state = StateDone

	if m.opts.ShowProgress {
		pp.Println("Upload completed successfully!")
	}

	return report, nil
}

func (m *Mirror) mount(ctx context.Context) error {
	mp := m.opts.MountPoint
	c := m.opts.Credentials

	if err := m.fs.MkdirAll(ctx, mp); err != nil {
		return fmt.Errorf("%w: cannot create mount point %s: %w", ErrMountFailed, mp, err)
	}

	if m.opts.ShowProgress {
		pp.Println("Mounting WebDAV...")
	}

	err := m.fs.Mount(ctx, c.URL, mp)
	if err == nil {
		return nil
	}

	slog.Warn("Failed to mount WebDAV, trying with credentials", "err", err)
	if m.opts.ShowProgress {
		pp.Println("Failed to mount WebDAV, trying with credentials...")
	}

	secrets := []byte(c.Username + ":" + c.Password + "\n")
	if err := m.fs.WriteSecrets(ctx, m.opts.SecretsFile, secrets); err != nil {
		return fmt.Errorf("%w: cannot write secrets file %s: %w", ErrMountFailed, m.opts.SecretsFile, err)
	}

	if err := m.fs.Mount(ctx, c.URL, mp); err != nil {
		return fmt.Errorf("%w: %w", ErrMountFailed, err)
	}

	return nil
}

func (m *Mirror) uploadVersion(ctx context.Context, report *Report, version string, files []string) error {
	if m.opts.ShowProgress {
		pp.BluePrintln(">>> Version", version)
	}

	dir := filepath.Join(m.opts.MountPoint, version)
	if err := m.fs.MkdirAll(ctx, dir); err != nil {
		return ee.Wrapf(err, "cannot create directory %s", dir)
	}

	var uploaded []string
	for _, name := range files {
		src := filepath.Join(m.opts.SourceDir, name)

		ok, err := fsutil.IsFile(src)
		if err != nil {
			return ee.Wrapf(err, "cannot access %s", src)
		}
		if !ok {
			slog.Warn("Grouped file not found", "file", src)
			if m.opts.ShowProgress {
				pp.Println("  Warning:", name, "not found")
			}
			report.Missing = append(report.Missing, name)
			continue
		}

		if err := m.fs.CopyFile(ctx, src, filepath.Join(dir, name)); err != nil {
			return err
		}
		uploaded = append(uploaded, name)

		if m.opts.ShowProgress {
			pp.Println("  Uploaded:", name)
		}
	}
	report.Uploaded[version] = uploaded

	// flatten the whole version directory into the mount root, files of earlier runs included
	if err := m.fs.CopyDir(ctx, dir, m.opts.MountPoint); err != nil {
		return ee.Wrapf(err, "cannot copy %s into %s", dir, m.opts.MountPoint)
	}

	return nil
}

func (m *Mirror) unmount(ctx context.Context) error {
	err := m.fs.Unmount(ctx, m.opts.MountPoint)
	if err != nil {
		slog.Warn("Cannot unmount WebDAV", "mountPoint", m.opts.MountPoint, "err", err)
		return err
	}

	if m.opts.ShowProgress {
		pp.Println("WebDAV unmounted")
	}
	return nil
}
