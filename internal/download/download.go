// Package download saves release assets under canonical filenames.
package download

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/pp"
	"github.com/google/uuid"
	"github.com/levigross/grequests"

	"github.com/ImSingee/relsync/internal/fileset"
	"github.com/ImSingee/relsync/internal/lib/fsutil"
	"github.com/ImSingee/relsync/internal/lib/glob"
	"github.com/ImSingee/relsync/internal/release"
	"github.com/ImSingee/relsync/internal/version"
)

// Classify maps an asset name to the type it is stored as.
// An asset ending in .AppImage or .apk is an AppImage if its name mentions AppImage at all.
func Classify(assetName string) (fileset.FileType, bool) {
	switch {
	case strings.HasSuffix(assetName, ".AppImage"), strings.HasSuffix(assetName, ".apk"):
		if strings.Contains(assetName, "AppImage") {
			return fileset.AppImage, true
		}
		return fileset.Apk, true
	case strings.HasSuffix(assetName, ".exe"):
		return fileset.Exe, true
	}

	return "", false
}

type Downloader struct {
	Dir     string
	Product string
	Client  *http.Client
	Assets  *glob.Set

	// CanonicalNotes also writes notes as <product>-<tag>.md
	CanonicalNotes bool
	// ShowProgress prints a line per asset
	ShowProgress bool
}

func New(dir, product string) *Downloader {
	return &Downloader{
		Dir:          dir,
		Product:      product,
		ShowProgress: true,
	}
}

// DownloadAll processes releases in order, one asset at a time.
//
// A failed asset is recorded in the summary and does not stop the run.
// A release that cannot be handled at all, e.g. its notes cannot be written, stops it.
func (d *Downloader) DownloadAll(ctx context.Context, releases []release.Release) (*Summary, error) {
	summary := &Summary{}

	for _, rel := range releases {
		if rel.Tag == "" {
			continue
		}

		if d.ShowProgress {
			pp.BluePrintln(">>> Release", rel.Tag)
		}

		err := d.downloadRelease(ctx, rel, summary)
		if err != nil {
			return summary, ee.Wrapf(err, "cannot process release %s", rel.Tag)
		}
	}

	return summary, nil
}

func (d *Downloader) downloadRelease(ctx context.Context, rel release.Release, summary *Summary) error {
	if rel.Notes != "" {
		files, err := d.writeNotes(rel)
		if err != nil {
			return err
		}
		summary.NotesFiles = append(summary.NotesFiles, files...)
	}

	for _, asset := range rel.Assets {
		o := d.downloadAsset(ctx, rel.Tag, asset)
		summary.add(o)

		if !d.ShowProgress {
			continue
		}
		switch o.Status {
		case StatusDownloaded:
			pp.Println("  Downloaded:", o.String())
		case StatusFailed:
			pp.RedPrintln("  Failed to download", o.Asset+":", o.Err.Error())
		}
	}

	return nil
}

func (d *Downloader) writeNotes(rel release.Release) ([]string, error) {
	names := []string{fileset.NotesFileName(rel.Tag)}
	if d.CanonicalNotes {
		names = append(names, fileset.CanonicalName(d.Product, rel.Tag, fileset.Notes))
	}

	for _, name := range names {
		p := filepath.Join(d.Dir, name)
		if _, err := fsutil.MkdirFor(p); err != nil {
			return nil, err
		}
		if err := os.WriteFile(p, []byte(rel.Notes), 0644); err != nil {
			return nil, ee.Wrapf(err, "cannot write release notes to %s", p)
		}
	}

	return names, nil
}

func (d *Downloader) downloadAsset(ctx context.Context, tag string, asset release.Asset) Outcome {
	o := Outcome{Tag: tag, Asset: asset.Name}

	if asset.Name == "" || asset.DownloadURL == "" {
		o.Status = StatusSkipped
		o.Reason = "missing name or download url"
		return o
	}

	t, ok := Classify(asset.Name)
	if !ok {
		o.Status = StatusSkipped
		o.Reason = "unrecognized file type"
		return o
	}
	if !d.Assets.Match(asset.Name) {
		o.Status = StatusSkipped
		o.Reason = "excluded by asset globs"
		return o
	}

	o.File = fileset.CanonicalName(d.Product, tag, t)

	size, err := d.downloadFileTo(ctx, asset.DownloadURL, filepath.Join(d.Dir, o.File))
	if err != nil {
		o.Status = StatusFailed
		o.Err = err
		return o
	}

	o.Status = StatusDownloaded
	o.Size = size
	return o
}

// downloadFileTo downloads into a temporary file next to dst and renames it into place,
// so dst is either the complete new file or left untouched.
func (d *Downloader) downloadFileTo(ctx context.Context, url, dst string) (int64, error) {
	resp, err := grequests.Get(url, &grequests.RequestOptions{
		Context:    ctx,
		HTTPClient: d.Client,
		UserAgent:  version.UserAgent(),
	})
	if err != nil {
		return 0, ee.Wrapf(err, "cannot download file from %s", url)
	}
	defer resp.Close()

	if !resp.Ok {
		return 0, ee.Errorf("cannot download file from %s: status code = %d", url, resp.StatusCode)
	}

	dir, err := fsutil.MkdirFor(dst)
	if err != nil {
		return 0, err
	}

	tmp := filepath.Join(dir, ".relsync-"+uuid.NewString())
	defer os.Remove(tmp)

	err = resp.DownloadToFile(tmp)
	if err != nil {
		return 0, ee.Wrapf(err, "cannot write data to %s", dst)
	}

	stat, err := os.Stat(tmp)
	if err != nil {
		return 0, ee.Wrapf(err, "cannot stat downloaded file %s", tmp)
	}

	err = fsutil.Rename(tmp, dst)
	if err != nil {
		return 0, ee.Wrapf(err, "cannot save file %s", dst)
	}

	return stat.Size(), nil
}
