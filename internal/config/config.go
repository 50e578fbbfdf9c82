// Package config loads calendar source configuration and environment secrets.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/studyweek/internal/constants"
)

const (
	SourceGoogle = "google"
	SourceICS    = "ics"
	SourceCalDAV = "caldav"

	PublishNone = "none"

	defaultPasswordEnv = "CALDAV_PASSWORD"
)

//go:embed calendars.default.yaml
var defaultCalendars []byte

// Source declares one calendar to read from.
type Source struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Enabled     bool     `yaml:"enabled"`
	Paths       []string `yaml:"paths,omitempty"`
	Endpoint    string   `yaml:"endpoint,omitempty"`
	Username    string   `yaml:"username,omitempty"`
	Calendar    string   `yaml:"calendar,omitempty"`
	Path        string   `yaml:"path,omitempty"`
	PasswordEnv string   `yaml:"password_env,omitempty"`
}

// Password reads the source's CalDAV password from the environment.
func (s Source) Password() string {
	env := s.PasswordEnv
	if env == "" {
		env = defaultPasswordEnv
	}
	return os.Getenv(env)
}

// Calendars is the content of calendars.yaml.
type Calendars struct {
	Version int      `yaml:"version"`
	Publish string   `yaml:"publish"`
	Sources []Source `yaml:"sources"`
}

// Enabled returns the sources that are switched on.
func (c *Calendars) Enabled() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// Lookup finds a source by name.
func (c *Calendars) Lookup(name string) (Source, bool) {
	for _, s := range c.Sources {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Source{}, false
}

// Default returns the built-in configuration.
func Default() (*Calendars, error) {
	return Parse(defaultCalendars)
}

// Parse decodes, normalizes and validates calendars.yaml content.
func Parse(data []byte) (*Calendars, error) {
	var c Calendars
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("config: parse calendars: %w", err)
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &c, nil
}

// Load reads calendars.yaml from path, falling back to the built-in default
// when the file does not exist.
func Load(path string) (*Calendars, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default()
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// WriteDefault writes the built-in calendars.yaml to path. An existing file
// is kept unless force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	if err := os.WriteFile(path, defaultCalendars, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Save validates c and writes it back to path.
func (c *Calendars) Save(path string) error {
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode calendars: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Calendars) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Publish == "" {
		c.Publish = PublishNone
	}
	for i := range c.Sources {
		s := &c.Sources[i]
		s.Type = strings.ToLower(strings.TrimSpace(s.Type))
		if s.Name == "" {
			s.Name = s.Type
		}
		for j, p := range s.Paths {
			s.Paths[j] = ExpandPath(p)
		}
	}
}

func (c *Calendars) validate() error {
	seen := map[string]bool{}
	for _, s := range c.Sources {
		key := strings.ToLower(s.Name)
		if seen[key] {
			return fmt.Errorf("duplicate calendar source %q", s.Name)
		}
		seen[key] = true

		switch s.Type {
		case SourceGoogle:
		case SourceICS:
			if s.Enabled && len(s.Paths) == 0 {
				return fmt.Errorf("ics source %q needs at least one path", s.Name)
			}
		case SourceCalDAV:
			if s.Enabled && s.Endpoint == "" {
				return fmt.Errorf("caldav source %q needs an endpoint", s.Name)
			}
			if s.Enabled && s.Calendar == "" && s.Path == "" {
				return fmt.Errorf("caldav source %q needs a calendar name or path", s.Name)
			}
		default:
			return fmt.Errorf("calendar source %q has unknown type %q", s.Name, s.Type)
		}
	}

	switch strings.ToLower(c.Publish) {
	case PublishNone, SourceGoogle:
		return nil
	}
	src, ok := c.Lookup(c.Publish)
	if !ok || src.Type != SourceCalDAV {
		return fmt.Errorf("publish target %q is not none, google or a caldav source", c.Publish)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Dir returns the configuration directory for a store location. Connection
// strings fall back to the default config directory.
func Dir(storeLocation string) string {
	if IsPostgres(storeLocation) || storeLocation == "" {
		return filepath.Dir(ExpandPath(constants.DefaultConfigPath))
	}
	return filepath.Dir(ExpandPath(storeLocation))
}

// IsPostgres reports whether location is a PostgreSQL connection string.
func IsPostgres(location string) bool {
	return strings.HasPrefix(location, "postgres://") || strings.HasPrefix(location, "postgresql://")
}

// CalendarsPath is the location of calendars.yaml inside dir.
func CalendarsPath(dir string) string {
	return filepath.Join(dir, constants.CalendarsFileName)
}

// LoadEnv loads dir/.env into the process environment. Variables already set
// win, and a missing file is not an error.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, constants.EnvFileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}
