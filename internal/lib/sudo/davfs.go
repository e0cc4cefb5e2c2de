package sudo

import (
	"context"
	"log/slog"
	"strings"
)

// DavFS performs mirror filesystem operations with davfs2 and coreutils.
type DavFS struct {
	Runner *Runner
}

func NewDavFS(r *Runner) *DavFS {
	return &DavFS{Runner: r}
}

func (d *DavFS) Mount(ctx context.Context, url, mountPoint string) error {
	return d.Runner.Run(ctx, "mount", "-t", "davfs", url, mountPoint).Err()
}

func (d *DavFS) Unmount(ctx context.Context, mountPoint string) error {
	return d.Runner.Run(ctx, "umount", mountPoint).Err()
}

func (d *DavFS) MkdirAll(ctx context.Context, dir string) error {
	return d.Runner.Run(ctx, "mkdir", "-p", dir).Err()
}

func (d *DavFS) CopyFile(ctx context.Context, src, dst string) error {
	return d.Runner.Run(ctx, "cp", src, dst).Err()
}

// CopyDir copies the contents of src, not src itself, into dst.
func (d *DavFS) CopyDir(ctx context.Context, src, dst string) error {
	return d.Runner.Run(ctx, "cp", "-r", strings.TrimSuffix(src, "/")+"/.", dst).Err()
}

// WriteSecrets replaces path with content readable by its owner only.
// The content goes through stdin so it never shows up in a process list,
// and the file is created with mode 0600 so it is never readable by others.
func (d *DavFS) WriteSecrets(ctx context.Context, path string, content []byte) error {
	return d.Runner.RunWithInput(ctx, content, "install", "-m", "600", "/dev/stdin", path).Err()
}

// InstallDavfs installs davfs2 with apt-get. It is best-effort: failures are only logged.
func (d *DavFS) InstallDavfs(ctx context.Context) {
	if err := d.Runner.Run(ctx, "apt-get", "update").Err(); err != nil {
		slog.Warn("Cannot update package index", "err", err)
	}
	if err := d.Runner.Run(ctx, "apt-get", "install", "-y", "davfs2").Err(); err != nil {
		slog.Warn("Cannot install davfs2", "err", err)
	}
}
