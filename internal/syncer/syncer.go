// Package syncer wires fetching, downloading, grouping, retention and mirroring into one run.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/pp"

	"github.com/ImSingee/relsync/internal/config"
	"github.com/ImSingee/relsync/internal/download"
	"github.com/ImSingee/relsync/internal/fileset"
	"github.com/ImSingee/relsync/internal/lib/glob"
	"github.com/ImSingee/relsync/internal/mirror"
	"github.com/ImSingee/relsync/internal/release"
)

// ErrDownloadFailed marks a run that could not get the release list or save release notes.
// Nothing has been mounted when it is returned.
var ErrDownloadFailed = ee.New("failed to download releases")

// Source lists releases, newest first.
type Source interface {
	Fetch(ctx context.Context) ([]release.Release, error)
}

// davfsInstaller is implemented by filesystems that can install their own tooling.
type davfsInstaller interface {
	InstallDavfs(ctx context.Context)
}

type Syncer struct {
	Config *config.Config
	Source Source
	FS     mirror.PrivilegedFS

	// Client downloads the assets; nil uses the grequests default
	Client       *http.Client
	ShowProgress bool
}

func New(c *config.Config, source Source, fs mirror.PrivilegedFS) *Syncer {
	return &Syncer{
		Config:       c,
		Source:       source,
		FS:           fs,
		ShowProgress: true,
	}
}

// Plan is the local state the mirror step works from.
type Plan struct {
	Files fileset.VersionFileSet
	// Versions holds every version found, ascending
	Versions []string
	// Keep holds the retained versions, greatest first
	Keep []string
}

func (p *Plan) Empty() bool {
	return len(p.Files) == 0
}

type Result struct {
	Download *download.Summary
	Plan     *Plan
	Mirror   *mirror.Report
}

// Download fetches the release list and saves every recognized asset.
// Only a failure to get the list, or to write release notes, is returned as an error,
// wrapping ErrDownloadFailed. Failed assets are logged as a warning.
func (s *Syncer) Download(ctx context.Context) (*download.Summary, error) {
	assets, err := glob.Compile(s.Config.AssetGlobs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	if !assets.Empty() {
		slog.Debug("Only downloading matching assets", "globs", assets.Patterns())
	}

	if s.ShowProgress {
		pp.Println("Downloading all", s.Config.Product, "releases...")
	}

	releases, err := s.Source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	d := download.New(s.Config.WorkDir, s.Config.Product)
	d.Client = s.Client
	d.Assets = assets
	d.CanonicalNotes = s.Config.CanonicalNotes
	d.ShowProgress = s.ShowProgress

	summary, err := d.DownloadAll(ctx, releases)
	if err != nil {
		return summary, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	if s.ShowProgress {
		pp.Println(summary.String())
	}
	if err := summary.Err(); err != nil {
		slog.Warn("Some assets could not be downloaded", "err", err)
	}

	return summary, nil
}

// Plan groups the files of the working directory and applies retention.
func (s *Syncer) Plan() (*Plan, error) {
	files, err := fileset.Group(s.Config.WorkDir, s.Config.Product)
	if err != nil {
		return nil, err
	}

	versions := files.Versions()
	return &Plan{
		Files:    files,
		Versions: versions,
		Keep:     fileset.Retain(versions, s.Config.MaxVersions),
	}, nil
}

// Mirror uploads the retained versions of plan.
func (s *Syncer) Mirror(ctx context.Context, plan *Plan) (*mirror.Report, error) {
	if err := s.Config.Credentials.Validate(); err != nil {
		return nil, err
	}

	if s.Config.InstallDavfs {
		if i, ok := s.FS.(davfsInstaller); ok {
			i.InstallDavfs(ctx)
		}
	}

	if s.ShowProgress {
		pp.Println("Syncing to WebDAV:", s.Config.Credentials.URL)
	}

	m := mirror.New(s.FS, mirror.Options{
		MountPoint:   s.Config.MountPoint,
		SecretsFile:  s.Config.SecretsFile,
		SourceDir:    s.Config.WorkDir,
		Credentials:  s.Config.Credentials,
		ShowProgress: s.ShowProgress,
	})

	return m.Run(ctx, plan.Files.Keep(plan.Keep), plan.Keep)
}

// Sync runs the whole pipeline. Credentials are checked before anything touches the network.
func (s *Syncer) Sync(ctx context.Context) (*Result, error) {
	if err := s.Config.Credentials.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}

	summary, err := s.Download(ctx)
	result.Download = summary
	if err != nil {
		return result, err
	}

	plan, err := s.Plan()
	if err != nil {
		return result, err
	}
	result.Plan = plan

	if plan.Empty() {
		if s.ShowProgress {
			pp.Println("No version files found")
		}
		return result, nil
	}

	if s.ShowProgress {
		pp.Printf("Found %d versions: %s\n", len(plan.Versions), strings.Join(plan.Versions, ", "))
		pp.Printf("Keeping latest %d versions: %s\n", len(plan.Keep), strings.Join(plan.Keep, ", "))
	}

	report, err := s.Mirror(ctx, plan)
	result.Mirror = report
	if err != nil {
		return result, err
	}

	return result, nil
}
