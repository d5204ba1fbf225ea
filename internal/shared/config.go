package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvPrefix is the prefix for environment overrides, e.g. CRATE_SPOTIFY_CLIENT_ID.
const EnvPrefix = "crate"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Spotify   SpotifyConfig   `toml:"spotify" envconfig:"spotify"`
	Server    ServerConfig    `toml:"server" envconfig:"server"`
	Scraper   ScraperConfig   `toml:"scraper" envconfig:"scraper"`
	Playlists PlaylistsConfig `toml:"playlists" envconfig:"playlist"`
	Sync      SyncConfig      `toml:"sync" envconfig:"sync"`
	Pacing    PacingConfig    `toml:"pacing" envconfig:"pacing"`
	Log       LogConfig       `toml:"log" envconfig:"log"`
}

// SpotifyConfig contains Spotify API credentials and endpoints.
type SpotifyConfig struct {
	ClientID             string  `toml:"client_id" envconfig:"client_id"`
	ClientSecret         string  `toml:"client_secret" envconfig:"client_secret"`
	RedirectURI          string  `toml:"redirect_uri" envconfig:"redirect_uri"`
	APIURL               string  `toml:"api_url" envconfig:"api_url"`
	AuthURL              string  `toml:"auth_url" envconfig:"auth_url"`
	TokenURL             string  `toml:"token_url" envconfig:"token_url"`
	MaxRequestsPerSecond float64 `toml:"max_requests_per_second" envconfig:"max_requests_per_second"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host        string        `toml:"host" envconfig:"host"`
	Port        int           `toml:"port" envconfig:"port"`
	OpenBrowser bool          `toml:"open_browser" envconfig:"open_browser"`
	AuthTimeout time.Duration `toml:"auth_timeout" envconfig:"auth_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ScraperConfig describes the listing pages and the selectors used to read them.
type ScraperConfig struct {
	PageURL      string        `toml:"page_url" envconfig:"page_url"`
	ItemSelector string        `toml:"item_selector" envconfig:"item_selector"`
	LinkSelector string        `toml:"link_selector" envconfig:"link_selector"`
	TagSelector  string        `toml:"tag_selector" envconfig:"tag_selector"`
	UserAgent    string        `toml:"user_agent" envconfig:"user_agent"`
	Timeout      time.Duration `toml:"timeout" envconfig:"timeout"`
	StartPage    int           `toml:"start_page" envconfig:"start_page"`
	EndPage      int           `toml:"end_page" envconfig:"end_page"`
}

// PlaylistsConfig maps each destination to a Spotify playlist ID. Empty means unconfigured.
type PlaylistsConfig struct {
	Bass    string `toml:"bass" envconfig:"bass"`
	Techno  string `toml:"techno" envconfig:"techno"`
	House   string `toml:"house" envconfig:"house"`
	DNB     string `toml:"dnb" envconfig:"dnb"`
	Ambient string `toml:"ambient" envconfig:"ambient"`
	Rest    string `toml:"rest" envconfig:"rest"`
}

// ByName returns the playlist ID configured for a destination name (case-insensitive).
func (p PlaylistsConfig) ByName(name string) string {
	switch strings.ToLower(name) {
	case "bass":
		return p.Bass
	case "techno":
		return p.Techno
	case "house":
		return p.House
	case "dnb":
		return p.DNB
	case "ambient":
		return p.Ambient
	case "rest":
		return p.Rest
	default:
		return ""
	}
}

// Any reports whether at least one playlist is configured.
func (p PlaylistsConfig) Any() bool {
	return p.Bass != "" || p.Techno != "" || p.House != "" || p.DNB != "" || p.Ambient != "" || p.Rest != ""
}

// SyncConfig controls how matched tracks are written.
type SyncConfig struct {
	// InsertPosition is the playlist index for new tracks; negative appends at the end.
	InsertPosition int    `toml:"insert_position" envconfig:"insert_position"`
	DryRun         bool   `toml:"dry_run" envconfig:"dry_run"`
	ReportDir      string `toml:"report_dir" envconfig:"report_dir"`
}

// PacingConfig holds the fixed delays observed after each kind of remote call.
type PacingConfig struct {
	Search  time.Duration `toml:"search" envconfig:"search"`
	Tracks  time.Duration `toml:"tracks" envconfig:"tracks"`
	Write   time.Duration `toml:"write" envconfig:"write"`
	Page    time.Duration `toml:"page" envconfig:"page"`
	Preload time.Duration `toml:"preload" envconfig:"preload"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level" envconfig:"level"`
}

// LoadConfig reads a TOML configuration file from the specified path on top of [DefaultConfig].
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads envFile (when it exists) into the process environment, then overlays CRATE_* variables onto config.
//
// SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET and SPOTIFY_PLAYLIST_ID are read as fallbacks when the
// corresponding values are still empty. SPOTIFY_PLAYLIST_ID fills the rest playlist.
func ApplyEnv(config *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	fallback(&config.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	fallback(&config.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	fallback(&config.Playlists.Rest, "SPOTIFY_PLAYLIST_ID")
	return nil
}

func fallback(dst *string, key string) {
	if *dst != "" {
		return
	}
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}

// Validate checks the settings a sync run cannot do without.
func (c *Config) Validate() error {
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set", ErrMissingCredentials)
	}
	if !c.Playlists.Any() {
		return fmt.Errorf("%w: at least one playlist ID must be configured", ErrInvalidConfig)
	}
	if c.Scraper.StartPage < 1 || c.Scraper.EndPage < c.Scraper.StartPage {
		return fmt.Errorf("%w: page range %d..%d", ErrInvalidConfig, c.Scraper.StartPage, c.Scraper.EndPage)
	}
	if !strings.Contains(c.Scraper.PageURL, "%d") {
		return fmt.Errorf("%w: scraper page_url must contain %%d", ErrInvalidConfig)
	}
	return nil
}
