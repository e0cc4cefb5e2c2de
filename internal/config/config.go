package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/exjson"
	"github.com/ysmood/gson"
)

var ConfigFileNames = []string{
	".relsyncrc",
	".relsyncrc.json",
	"relsync.config.json",
}

const (
	EnvUsername = "WEBDAV_USERNAME"
	EnvPassword = "WEBDAV_PASSWORD"
	EnvURL      = "WEBDAV_URL"

	EnvProduct     = "RELSYNC_PRODUCT"
	EnvReleasesURL = "RELSYNC_RELEASES_URL"
	EnvMountPoint  = "RELSYNC_MOUNT_POINT"
	EnvMaxVersions = "RELSYNC_MAX_VERSIONS"
)

const (
	DefaultProduct     = "FoldCraftLauncher"
	DefaultReleasesURL = "https://api.github.com/repos/FCL-Team/FoldCraftLauncher/releases"
	DefaultMountPoint  = "/mnt/webdav"
	DefaultSecretsFile = "/etc/davfs2/secrets"
	DefaultMaxVersions = 3
	DefaultSudo        = "sudo"
)

// Credentials locate and authenticate the remote WebDAV share.
type Credentials struct {
	Username string
	Password string
	URL      string
}

// Validate reports ErrMissingCredentials naming every absent value.
func (c Credentials) Validate() error {
	var missing []string
	if c.Username == "" {
		missing = append(missing, EnvUsername)
	}
	if c.Password == "" {
		missing = append(missing, EnvPassword)
	}
	if c.URL == "" {
		missing = append(missing, EnvURL)
	}

	if len(missing) != 0 {
		return ee.Wrapf(ErrMissingCredentials, "missing %s", strings.Join(missing, ", "))
	}

	return nil
}

// Config is built once at startup and handed to every component.
type Config struct {
	Product     string
	ReleasesURL string
	WorkDir     string
	MountPoint  string
	SecretsFile string
	MaxVersions int

	// Sudo is the privilege prefix for mount and copy commands, split like a shell would.
	// An empty value runs the commands directly.
	Sudo string

	// AssetGlobs restricts downloads to matching asset names when non-empty.
	AssetGlobs []string

	// CanonicalNotes additionally stores release notes as <product>-<tag>.md
	// so they are grouped and mirrored with the other files.
	CanonicalNotes bool

	InstallDavfs bool

	Credentials Credentials
}

func Default() *Config {
	return &Config{
		Product:     DefaultProduct,
		ReleasesURL: DefaultReleasesURL,
		WorkDir:     ".",
		MountPoint:  DefaultMountPoint,
		SecretsFile: DefaultSecretsFile,
		MaxVersions: DefaultMaxVersions,
		Sudo:        DefaultSudo,
	}
}

// LookupEnv has the signature of os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// Load builds the configuration from defaults, a config file and the environment,
// later sources overriding earlier ones.
//
// If configPath is empty the first of ConfigFileNames found in dir is used, if any.
func Load(dir, configPath string, lookup LookupEnv) (*Config, error) {
	c := Default()
	if dir != "" {
		c.WorkDir = dir
	}

	if configPath == "" {
		found, err := FindConfigFile(c.WorkDir)
		if err != nil {
			return nil, err
		}
		configPath = found
	}

	if configPath != "" {
		m, err := ReadConfigFile(configPath)
		if err != nil {
			return nil, ee.Wrapf(err, "cannot read config file %s", configPath)
		}
		if err := c.applyFile(m); err != nil {
			return nil, ee.Wrapf(err, "cannot load config file %s", configPath)
		}
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := c.applyEnv(lookup); err != nil {
		return nil, err
	}

	return c, nil
}

// FindConfigFile returns "" without error when dir has no config file.
func FindConfigFile(dir string) (string, error) {
	for _, name := range ConfigFileNames {
		p := filepath.Join(dir, name)
		stat, err := os.Stat(p)
		if err != nil {
			if IsNotExist(err) {
				continue
			}
			return "", ee.Wrapf(err, "cannot access %s", p)
		}
		if !stat.IsDir() {
			return p, nil
		}
	}

	return "", nil
}

func ReadConfigFile(filename string) (map[string]gson.JSON, error) {
	// only parse json now

	var obj map[string]any
	err := exjson.Read(filename, &obj)
	if err != nil {
		return nil, err
	}

	return gson.New(obj).Map(), nil
}

func (c *Config) applyFile(m map[string]gson.JSON) error {
	for key, value := range m {
		v := value.Val()

		switch key {
		case "product":
			s, err := stringValue(key, v)
			if err != nil {
				return err
			}
			c.Product = s
		case "releasesURL":
			s, err := stringValue(key, v)
			if err != nil {
				return err
			}
			c.ReleasesURL = s
		case "mountPoint":
			s, err := stringValue(key, v)
			if err != nil {
				return err
			}
			c.MountPoint = s
		case "secretsFile":
			s, err := stringValue(key, v)
			if err != nil {
				return err
			}
			c.SecretsFile = s
		case "sudo":
			s, err := stringValue(key, v)
			if err != nil {
				return err
			}
			c.Sudo = s
		case "maxVersions":
			n, err := intValue(key, v)
			if err != nil {
				return err
			}
			c.MaxVersions = n
		case "canonicalNotes":
			b, ok := v.(bool)
			if !ok {
				return ee.Wrapf(ErrInvalidConfig, "`%s` must be a boolean", key)
			}
			c.CanonicalNotes = b
		case "installDavfs":
			b, ok := v.(bool)
			if !ok {
				return ee.Wrapf(ErrInvalidConfig, "`%s` must be a boolean", key)
			}
			c.InstallDavfs = b
		case "assetGlobs":
			list, ok := v.([]any)
			if !ok {
				return ee.Wrapf(ErrInvalidConfig, "`%s` must be a string list", key)
			}
			globs := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return ee.Wrapf(ErrInvalidConfig, "`%s` must be a string list", key)
				}
				globs = append(globs, s)
			}
			c.AssetGlobs = globs
		default:
			return ee.Wrapf(ErrInvalidConfig, "unknown key `%s`", key)
		}
	}

	return nil
}

func stringValue(key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", ee.Wrapf(ErrInvalidConfig, "`%s` must be a string", key)
	}
	return s, nil
}

func intValue(key string, v any) (int, error) {
	switch n := v.(type) {
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
	}
	return 0, ee.Wrapf(ErrInvalidConfig, "`%s` must be an integer", key)
}

func (c *Config) applyEnv(lookup LookupEnv) error {
	if v, ok := lookup(EnvProduct); ok && v != "" {
		c.Product = v
	}
	if v, ok := lookup(EnvReleasesURL); ok && v != "" {
		c.ReleasesURL = v
	}
	if v, ok := lookup(EnvMountPoint); ok && v != "" {
		c.MountPoint = v
	}
	if v, ok := lookup(EnvMaxVersions); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ee.Wrapf(ErrInvalidConfig, "%s=%s is not an integer", EnvMaxVersions, v)
		}
		c.MaxVersions = n
	}

	c.Credentials.Username, _ = lookup(EnvUsername)
	c.Credentials.Password, _ = lookup(EnvPassword)
	c.Credentials.URL, _ = lookup(EnvURL)

	return nil
}

// Check validates values that every command depends on.
// Credentials are checked separately since only mirroring needs them.
func (c *Config) Check() error {
	if c.Product == "" {
		return ee.Wrap(ErrInvalidConfig, "product name is empty")
	}
	if c.ReleasesURL == "" {
		return ee.Wrap(ErrInvalidConfig, "releases url is empty")
	}
	if c.MountPoint == "" {
		return ee.Wrap(ErrInvalidConfig, "mount point is empty")
	}
	if c.MaxVersions < 0 {
		return ee.Wrapf(ErrInvalidConfig, "max versions must not be negative (got %d)", c.MaxVersions)
	}

	return nil
}
