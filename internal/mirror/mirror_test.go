package mirror

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/ImSingee/go-ex/ee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ImSingee/relsync/internal/config"
	"github.com/ImSingee/relsync/internal/fileset"
	"github.com/ImSingee/relsync/internal/mirror/mirrortest"
)

const mountPoint = "/mnt/webdav"

var creds = config.Credentials{Username: "alice", Password: "secret", URL: "https://dav.example.com/files"}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()

	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data of "+name), 0644))
	}
}

func newMirror(fs PrivilegedFS, dir string) *Mirror {
	return New(fs, Options{
		MountPoint:  mountPoint,
		SecretsFile: "/etc/davfs2/secrets",
		SourceDir:   dir,
		Credentials: creds,
	})
}

func TestRunRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"App-1.2.0.exe", "App-1.2.0.apk", "App-1.2.0.AppImage",
		"App-1.1.0.exe", "App-1.1.0.md",
		"App-1.0.0.apk",
		"unrelated.txt",
	)

	set, err := fileset.Group(dir, "App")
	require.NoError(t, err)
	versions := fileset.Retain(set.Versions(), 2)

	fs := mirrortest.New()
	m := newMirror(fs, dir)

	report, err := m.Run(context.Background(), set, versions)
	require.NoError(t, err)
	assert.Equal(t, StateDone, m.State())
	assert.True(t, report.Unmounted)
	assert.False(t, fs.Mounted)

	// one directory per retained version
	assert.Equal(t, []string{"1.1.0", "1.2.0"}, fs.Subdirs(mountPoint))

	// holding exactly the files grouped under it
	for _, v := range versions {
		want := append([]string(nil), set.Files(v)...)
		sort.Strings(want)
		assert.Equal(t, want, fs.List(filepath.Join(mountPoint, v)), v)
		assert.Equal(t, set.Files(v), report.Uploaded[v])

		for _, name := range want {
			assert.Equal(t, "data of "+name, string(fs.Files[filepath.Join(mountPoint, v, name)]))
		}
	}

	// and flattened into the root
	assert.Equal(t, []string{
		"App-1.1.0.exe", "App-1.1.0.md",
		"App-1.2.0.AppImage", "App-1.2.0.apk", "App-1.2.0.exe",
	}, fs.List(mountPoint))

	assert.Len(t, fs.CallsWithPrefix("mount"), 1)
	assert.Len(t, fs.CallsWithPrefix("umount"), 1)
	assert.Empty(t, fs.Secrets)
}

func TestRunMountRetry(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "App-1.0.0.exe")
	set := fileset.GroupNames([]string{"App-1.0.0.exe"}, "App")

	fs := mirrortest.New()
	fs.MountErrs = []error{errors.New("no credentials")}

	report, err := newMirror(fs, dir).Run(context.Background(), set, []string{"1.0.0"})
	require.NoError(t, err)

	assert.Equal(t, "alice:secret\n", string(fs.Secrets["/etc/davfs2/secrets"]))
	assert.Len(t, fs.CallsWithPrefix("mount"), 2)
	assert.Equal(t, []string{"App-1.0.0.exe"}, fs.List(filepath.Join(mountPoint, "1.0.0")))
	assert.True(t, report.Unmounted)
}

func TestRunMountFailsTwice(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "App-1.0.0.exe")
	set := fileset.GroupNames([]string{"App-1.0.0.exe"}, "App")

	fs := mirrortest.New()
	fs.MountErrs = []error{errors.New("first"), errors.New("second")}
	m := newMirror(fs, dir)

	report, err := m.Run(context.Background(), set, []string{"1.0.0"})
	require.Error(t, err)
	assert.True(t, ee.Is(err, ErrMountFailed))
	assert.Contains(t, err.Error(), "second")
	assert.Equal(t, StateFailed, m.State())

	// no third attempt, nothing uploaded, unmount still tried once
	assert.Len(t, fs.CallsWithPrefix("mount"), 2)
	assert.Empty(t, fs.CallsWithPrefix("cp"))
	assert.Len(t, fs.CallsWithPrefix("umount"), 1)

	// the unmount failure is reported but does not replace the mount error
	require.NotNil(t, report)
	assert.False(t, report.Unmounted)
	assert.Error(t, report.UnmountErr)
}

func TestRunCopyFailure(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "App-2.0.exe", "App-2.0.apk", "App-1.0.exe")
	set := fileset.GroupNames([]string{"App-2.0.exe", "App-2.0.apk", "App-1.0.exe"}, "App")

	fs := mirrortest.New()
	fs.FailCopy = func(src, dst string) error {
		if strings.HasSuffix(dst, "App-1.0.exe") {
			return errors.New("disk full")
		}
		return nil
	}
	m := newMirror(fs, dir)

	_, err := m.Run(context.Background(), set, []string{"2.0", "1.0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, StateFailed, m.State())

	// 1.0 is uploaded first and its failure stops the loop before 2.0
	assert.Len(t, fs.CallsWithPrefix("cp"), 1)
	assert.NotContains(t, fs.Subdirs(mountPoint), "2.0")
	assert.Len(t, fs.CallsWithPrefix("umount"), 1)
	assert.False(t, fs.Mounted)
}

func TestRunMissingCredentials(t *testing.T) {
	fs := mirrortest.New()
	m := New(fs, Options{
		MountPoint:  mountPoint,
		Credentials: config.Credentials{Username: "alice", Password: "secret"},
	})

	report, err := m.Run(context.Background(), fileset.VersionFileSet{}, nil)
	require.Error(t, err)
	assert.True(t, ee.Is(err, config.ErrMissingCredentials))
	assert.Nil(t, report)
	assert.Empty(t, fs.Calls)
	assert.Equal(t, StateUnconfigured, m.State())
}

func TestRunUnmountFailureSwallowed(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "App-1.0.0.exe")
	set := fileset.GroupNames([]string{"App-1.0.0.exe"}, "App")

	fs := mirrortest.New()
	fs.UnmountErr = errors.New("device busy")

	report, err := newMirror(fs, dir).Run(context.Background(), set, []string{"1.0.0"})
	require.NoError(t, err)
	assert.False(t, report.Unmounted)
	assert.EqualError(t, report.UnmountErr, "device busy")
}

func TestRunMissingSourceFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "App-1.0.0.exe")
	set := fileset.GroupNames([]string{"App-1.0.0.exe", "App-1.0.0.apk"}, "App")

	fs := mirrortest.New()
	report, err := newMirror(fs, dir).Run(context.Background(), set, []string{"1.0.0"})
	require.NoError(t, err)

	assert.Equal(t, []string{"App-1.0.0.apk"}, report.Missing)
	assert.Equal(t, []string{"App-1.0.0.exe"}, fs.List(filepath.Join(mountPoint, "1.0.0")))
}

func TestRunFlattenPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "App-2.0.exe", "App-1.0.exe")
	set := fileset.GroupNames([]string{"App-2.0.exe", "App-1.0.exe"}, "App")

	fs := mirrortest.New()
	fs.Seed(filepath.Join(mountPoint, "1.0", "shared.txt"), []byte("old"))
	fs.Seed(filepath.Join(mountPoint, "2.0", "shared.txt"), []byte("new"))

	_, err := newMirror(fs, dir).Run(context.Background(), set, []string{"2.0", "1.0"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"cpdir " + filepath.Join(mountPoint, "1.0") + " " + mountPoint,
		"cpdir " + filepath.Join(mountPoint, "2.0") + " " + mountPoint,
	}, fs.CallsWithPrefix("cpdir"))
	assert.Equal(t, "new", string(fs.Files[filepath.Join(mountPoint, "shared.txt")]))
}

func TestRunFlattenIncludesEarlierFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "App-1.0.0.exe")
	set := fileset.GroupNames([]string{"App-1.0.0.exe"}, "App")

	fs := mirrortest.New()
	fs.Seed(filepath.Join(mountPoint, "1.0.0", "App-1.0.0.md"), []byte("notes from last week"))

	report, err := newMirror(fs, dir).Run(context.Background(), set, []string{"1.0.0"})
	require.NoError(t, err)

	assert.Equal(t, []string{"App-1.0.0.exe"}, report.Uploaded["1.0.0"])
	assert.Equal(t, []string{"App-1.0.0.exe", "App-1.0.0.md"}, fs.List(filepath.Join(mountPoint, "1.0.0")))
	assert.Equal(t, []string{"App-1.0.0.exe", "App-1.0.0.md"}, fs.List(mountPoint))
	assert.Equal(t, "notes from last week", string(fs.Files[filepath.Join(mountPoint, "App-1.0.0.md")]))
}

func TestRunOnce(t *testing.T) {
	fs := mirrortest.New()
	m := newMirror(fs, t.TempDir())

	_, err := m.Run(context.Background(), fileset.VersionFileSet{}, nil)
	require.NoError(t, err)

	_, err = m.Run(context.Background(), fileset.VersionFileSet{}, nil)
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uploading", StateUploading.String())
	assert.Equal(t, "State(42)", State(42).String())
}
