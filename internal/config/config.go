// Package config loads the optional decotree.yaml file, applies DECOTREE_*
// environment overrides and resolves defaults for the treectl command.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"decotree/internal/blob"
	"decotree/internal/snapshot"
)

// DefaultFile is read when no path is given.
const DefaultFile = "decotree.yaml"

// DefaultName is the snapshot name used when none is configured.
const DefaultName = "default"

// Config mirrors decotree.yaml.
type Config struct {
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Log      LogConfig      `yaml:"log"`
	// Journal is a path receiving JSON lines of tree hook events.
	Journal string `yaml:"journal,omitempty"`
}

// SnapshotConfig selects the snapshot repository.
type SnapshotConfig struct {
	Driver   string         `yaml:"driver,omitempty"`
	Name     string         `yaml:"name,omitempty"`
	FS       FSConfig       `yaml:"fs"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	S3       S3Config       `yaml:"s3"`
}

// FSConfig configures the filesystem driver.
type FSConfig struct {
	Root string `yaml:"root,omitempty"`
}

// SQLiteConfig configures the sqlite driver.
type SQLiteConfig struct {
	Path string `yaml:"path,omitempty"`
}

// PostgresConfig configures the postgres driver.
type PostgresConfig struct {
	DSN string `yaml:"dsn,omitempty"`
}

// S3Config configures the s3 driver. Credentials come from the default AWS
// chain unless the access key fields are set.
type S3Config struct {
	Bucket          string `yaml:"bucket,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	Prefix          string `yaml:"prefix,omitempty"`
	PathStyle       bool   `yaml:"path_style,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Resolved holds the effective settings.
type Resolved struct {
	Snapshot  snapshot.Config
	Name      string
	LogLevel  slog.Level
	LogFormat string
	Journal   string
}

// LoadOptional reads path (DefaultFile when empty) if present. A missing file
// yields an empty Config.
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from DECOTREE_* variables looked up with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Snapshot.Driver, "DECOTREE_SNAPSHOT_DRIVER")
	set(&c.Snapshot.Name, "DECOTREE_SNAPSHOT_NAME")
	set(&c.Snapshot.FS.Root, "DECOTREE_FS_ROOT")
	set(&c.Snapshot.SQLite.Path, "DECOTREE_SQLITE_PATH")
	set(&c.Snapshot.Postgres.DSN, "DECOTREE_POSTGRES_DSN")
	set(&c.Snapshot.S3.Bucket, "DECOTREE_S3_BUCKET")
	set(&c.Snapshot.S3.Region, "DECOTREE_S3_REGION")
	set(&c.Snapshot.S3.Endpoint, "DECOTREE_S3_ENDPOINT")
	set(&c.Snapshot.S3.Prefix, "DECOTREE_S3_PREFIX")
	set(&c.Snapshot.S3.AccessKeyID, "DECOTREE_S3_ACCESS_KEY_ID")
	set(&c.Snapshot.S3.SecretAccessKey, "DECOTREE_S3_SECRET_ACCESS_KEY")
	set(&c.Log.Level, "DECOTREE_LOG_LEVEL")
	set(&c.Log.Format, "DECOTREE_LOG_FORMAT")
	set(&c.Journal, "DECOTREE_JOURNAL")
	if v := strings.TrimSpace(getenv("DECOTREE_S3_PATH_STYLE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DECOTREE_S3_PATH_STYLE: %w", err)
		}
		c.Snapshot.S3.PathStyle = b
	}
	return nil
}

// Resolve validates c and fills in defaults.
func (c *Config) Resolve() (*Resolved, error) {
	driver := snapshot.Driver(strings.ToLower(strings.TrimSpace(c.Snapshot.Driver)))
	if driver == "" {
		driver = snapshot.DriverFS
	}
	known := false
	for _, d := range snapshot.Drivers() {
		if d == driver {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("snapshot.driver %q is not one of %v", driver, snapshot.Drivers())
	}
	if driver == snapshot.DriverS3 && strings.TrimSpace(c.Snapshot.S3.Bucket) == "" {
		return nil, fmt.Errorf("snapshot.s3.bucket is required for the s3 driver")
	}

	name := strings.TrimSpace(c.Snapshot.Name)
	if name == "" {
		name = DefaultName
	}
	if err := snapshot.ValidateName(name); err != nil {
		return nil, fmt.Errorf("snapshot.name: %w", err)
	}

	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "":
		format = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}

	s3 := c.Snapshot.S3
	return &Resolved{
		Snapshot: snapshot.Config{
			Driver:      driver,
			FSRoot:      c.Snapshot.FS.Root,
			SQLitePath:  c.Snapshot.SQLite.Path,
			PostgresDSN: c.Snapshot.Postgres.DSN,
			S3: blob.S3Config{
				Bucket:          s3.Bucket,
				Region:          s3.Region,
				Endpoint:        s3.Endpoint,
				Prefix:          s3.Prefix,
				PathStyle:       s3.PathStyle,
				AccessKeyID:     s3.AccessKeyID,
				SecretAccessKey: s3.SecretAccessKey,
			},
		},
		Name:      name,
		LogLevel:  level,
		LogFormat: format,
		Journal:   strings.TrimSpace(c.Journal),
	}, nil
}

func parseLevel(s string) (slog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Load reads path, applies the environment and resolves the result.
func Load(path string, getenv func(string) string) (*Resolved, error) {
	cfg, err := LoadOptional(path)
	if err != nil {
		return nil, err
	}
	if getenv != nil {
		if err := cfg.ApplyEnv(getenv); err != nil {
			return nil, err
		}
	}
	return cfg.Resolve()
}
