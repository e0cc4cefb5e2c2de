package sudo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		r := &Runner{}
		result := r.Run(ctx, "echo", "hello")
		require.NoError(t, result.Err())
		assert.Equal(t, 0, result.ExitCode)
		assert.Equal(t, "hello", strings.TrimSpace(string(result.Output)))
	})

	t.Run("prefix", func(t *testing.T) {
		r, err := NewRunner("echo -n")
		require.NoError(t, err)

		result := r.Run(ctx, "umount", "/mnt/webdav")
		require.NoError(t, result.Err())
		assert.Equal(t, "umount /mnt/webdav", string(result.Output))
		assert.Equal(t, "echo -n umount /mnt/webdav", result.Command)
	})

	t.Run("exit error", func(t *testing.T) {
		r := &Runner{}
		result := r.Run(ctx, "false")
		assert.Equal(t, 1, result.ExitCode)
		assert.NotNil(t, result.ExitErr)
		assert.Error(t, result.Err())
	})

	t.Run("command not found", func(t *testing.T) {
		r := &Runner{}
		result := r.Run(ctx, "relsync-command-that-does-not-exist")
		assert.Equal(t, -1, result.ExitCode)
		assert.Error(t, result.Err())
	})

	t.Run("input", func(t *testing.T) {
		r := &Runner{}
		result := r.RunWithInput(ctx, []byte("piped"), "cat")
		require.NoError(t, result.Err())
		assert.Equal(t, "piped", string(result.Output))
	})

	t.Run("invalid prefix", func(t *testing.T) {
		_, err := NewRunner(`sudo "unterminated`)
		assert.Error(t, err)
	})
}

func TestDavFS(t *testing.T) {
	ctx := context.Background()

	t.Run("mount command line", func(t *testing.T) {
		fs := NewDavFS(&Runner{Prefix: []string{"echo"}})
		assert.NoError(t, fs.Mount(ctx, "https://dav.example.com/files", "/mnt/webdav"))
		assert.NoError(t, fs.Unmount(ctx, "/mnt/webdav"))
	})

	t.Run("mount failure", func(t *testing.T) {
		fs := NewDavFS(&Runner{Prefix: []string{"false"}})
		err := fs.Mount(ctx, "https://dav.example.com/files", "/mnt/webdav")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mount -t davfs")
	})

	t.Run("local operations", func(t *testing.T) {
		fs := NewDavFS(&Runner{})
		dir := t.TempDir()

		target := filepath.Join(dir, "mnt", "1.2.0")
		require.NoError(t, fs.MkdirAll(ctx, target))
		require.NoError(t, fs.MkdirAll(ctx, target))

		src := filepath.Join(dir, "App-1.2.0.apk")
		require.NoError(t, os.WriteFile(src, []byte("apk"), 0644))
		require.NoError(t, fs.CopyFile(ctx, src, filepath.Join(target, "App-1.2.0.apk")))

		data, err := os.ReadFile(filepath.Join(target, "App-1.2.0.apk"))
		require.NoError(t, err)
		assert.Equal(t, "apk", string(data))

		// contents of the version directory land in the mount root, not the directory itself
		mnt := filepath.Join(dir, "mnt")
		require.NoError(t, os.WriteFile(filepath.Join(target, "App-1.2.0.md"), []byte("notes"), 0644))
		require.NoError(t, fs.CopyDir(ctx, target, mnt))

		data, err = os.ReadFile(filepath.Join(mnt, "App-1.2.0.apk"))
		require.NoError(t, err)
		assert.Equal(t, "apk", string(data))
		data, err = os.ReadFile(filepath.Join(mnt, "App-1.2.0.md"))
		require.NoError(t, err)
		assert.Equal(t, "notes", string(data))
		_, err = os.Stat(filepath.Join(mnt, "1.2.0", "1.2.0"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("secrets", func(t *testing.T) {
		fs := NewDavFS(&Runner{})
		p := filepath.Join(t.TempDir(), "secrets")

		require.NoError(t, fs.WriteSecrets(ctx, p, []byte("alice:secret\n")))

		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "alice:secret\n", string(data))

		stat, err := os.Stat(p)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), stat.Mode().Perm())
	})

	t.Run("secrets replace a readable file", func(t *testing.T) {
		fs := NewDavFS(&Runner{})
		p := filepath.Join(t.TempDir(), "secrets")
		require.NoError(t, os.WriteFile(p, []byte("old:old\nmore\n"), 0644))

		require.NoError(t, fs.WriteSecrets(ctx, p, []byte("bob:pw\n")))

		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "bob:pw\n", string(data))

		stat, err := os.Stat(p)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), stat.Mode().Perm())
	})

	t.Run("secrets command line", func(t *testing.T) {
		fs := NewDavFS(&Runner{Prefix: []string{"false"}})
		err := fs.WriteSecrets(ctx, "/etc/davfs2/secrets", []byte("alice:secret\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "install -m 600 /dev/stdin /etc/davfs2/secrets")
		assert.NotContains(t, err.Error(), "secret\n")
	})
}
