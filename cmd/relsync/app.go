package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/pp"
	"github.com/spf13/cobra"

	"github.com/ImSingee/relsync/internal/config"
	"github.com/ImSingee/relsync/internal/lib/sudo"
	"github.com/ImSingee/relsync/internal/lib/xlog"
	"github.com/ImSingee/relsync/internal/mirror"
	"github.com/ImSingee/relsync/internal/release"
	"github.com/ImSingee/relsync/internal/syncer"
	"github.com/ImSingee/relsync/internal/version"
)

const help = `Mirror the latest releases of a product onto a WebDAV share.

Without a subcommand relsync runs ` + "`relsync sync`" + `: every release asset is downloaded
into the working directory, files are grouped by version and the latest versions
are copied to the share mounted with davfs2.

The share is read from the environment:
  WEBDAV_USERNAME, WEBDAV_PASSWORD, WEBDAV_URL
`

// cli holds everything a command needs from the outside world
// plus the values of the global flags.
type cli struct {
	lookupEnv config.LookupEnv
	client    *http.Client
	newFS     func(c *config.Config) (mirror.PrivilegedFS, error)

	configPath string
	debug      bool
	quiet      bool
	timeout    time.Duration

	product     string
	releasesURL string
	maxVersions int

	// download
	assetGlobs     []string
	canonicalNotes bool

	// mirror
	mountPoint   string
	secretsFile  string
	sudo         string
	installDavfs bool
}

func defaultCLI() *cli {
	return &cli{
		lookupEnv: os.LookupEnv,
		newFS:     newDavFS,
	}
}

func newDavFS(c *config.Config) (mirror.PrivilegedFS, error) {
	r, err := sudo.NewRunner(c.Sudo)
	if err != nil {
		return nil, ee.Wrap(config.ErrInvalidConfig, err.Error())
	}

	return sudo.NewDavFS(r), nil
}

func newApp(c *cli) *cobra.Command {
	app := &cobra.Command{
		Use:           "relsync",
		Long:          help,
		Version:       version.Get().String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.AddCommand(
		c.syncCommand(),
		c.downloadCommand(),
		c.mirrorCommand(),
		c.listCommand(),
		versionCommand(),
	)

	// for global flags
	pf := app.PersistentFlags()
	pf.SortFlags = false
	pf.StringP("root", "R", "", "change command working directory")
	pf.StringVarP(&c.configPath, "config", "c", "", "config file (default: first of "+strings.Join(config.ConfigFileNames, ", ")+" in the working directory)")
	pf.BoolVar(&c.debug, "debug", false, "print additional debug information")
	pf.BoolVarP(&c.quiet, "quiet", "q", false, "quiet mode (hide any output)")
	pf.DurationVar(&c.timeout, "timeout", 0, "abort the run after this duration (0 means no limit)")
	pf.StringVar(&c.product, "product", "", "product name used in file names (default "+config.DefaultProduct+")")
	pf.StringVar(&c.releasesURL, "releases-url", "", "releases API endpoint")
	pf.IntVar(&c.maxVersions, "max-versions", 0, "number of versions to keep on the share (default 3)")

	app.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if c.quiet {
			pp.Stdout.ChangeWriter(io.Discard)
			pp.Stderr.ChangeWriter(io.Discard)
		}

		slog.SetDefault(xlog.New(os.Stderr, c.debug, c.quiet))

		if root, _ := cmd.Flags().GetString("root"); root != "" {
			slog.Debug("Change working directory", "root", root)
			err := os.Chdir(root)
			if err != nil {
				return ee.Wrapf(err, "cannot change working directory to %s", root)
			}
		}

		return nil
	}

	// default action
	c.addDownloadFlags(app)
	c.addMirrorFlags(app)
	app.RunE = func(cmd *cobra.Command, args []string) error {
		return c.runSync(cmd)
	}

	return app
}

func (c *cli) addDownloadFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVar(&c.assetGlobs, "asset-glob", nil, "only download assets matching one of these globs")
	flags.BoolVar(&c.canonicalNotes, "canonical-notes", false, "also save release notes as <product>-<version>.md so they are mirrored")
}

func (c *cli) addMirrorFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&c.mountPoint, "mount-point", "", "local directory the share is mounted on (default "+config.DefaultMountPoint+")")
	flags.StringVar(&c.secretsFile, "secrets-file", "", "davfs2 secrets file written when mounting fails (default "+config.DefaultSecretsFile+")")
	flags.StringVar(&c.sudo, "sudo", "", "privilege prefix for mount and copy commands, empty string to run directly (default "+config.DefaultSudo+")")
	flags.BoolVar(&c.installDavfs, "install-davfs", false, "install davfs2 with apt-get before mounting")
}

// loadConfig merges defaults, config file, environment and the flags set on cmd.
func (c *cli) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	conf, err := config.Load("", c.configPath, c.lookupEnv)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("product") {
		conf.Product = c.product
	}
	if changed("releases-url") {
		conf.ReleasesURL = c.releasesURL
	}
	if changed("max-versions") {
		conf.MaxVersions = c.maxVersions
	}
	if changed("asset-glob") {
		conf.AssetGlobs = c.assetGlobs
	}
	if changed("canonical-notes") {
		conf.CanonicalNotes = c.canonicalNotes
	}
	if changed("mount-point") {
		conf.MountPoint = c.mountPoint
	}
	if changed("secrets-file") {
		conf.SecretsFile = c.secretsFile
	}
	if changed("sudo") {
		conf.Sudo = c.sudo
	}
	if changed("install-davfs") {
		conf.InstallDavfs = c.installDavfs
	}

	if err := conf.Check(); err != nil {
		return nil, err
	}

	slog.Debug("Loaded config", "product", conf.Product, "releasesURL", conf.ReleasesURL, "mountPoint", conf.MountPoint, "maxVersions", conf.MaxVersions)

	return conf, nil
}

func (c *cli) newSyncer(cmd *cobra.Command) (*syncer.Syncer, error) {
	conf, err := c.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	fs, err := c.newFS(conf)
	if err != nil {
		return nil, err
	}

	s := syncer.New(conf, release.NewFetcher(conf.ReleasesURL, c.client), fs)
	s.Client = c.client
	s.ShowProgress = !c.quiet

	return s, nil
}

func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}
