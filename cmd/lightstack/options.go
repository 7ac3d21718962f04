package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/activhome/lightstack/internal/config"
	"github.com/activhome/lightstack/internal/layout"
	"github.com/activhome/lightstack/internal/logging"
	"github.com/activhome/lightstack/internal/ui"
)

// EnvPrefix prefixes the environment variables that mirror the global
// flags, e.g. LIGHTSTACK_URL and LIGHTSTACK_TOKEN.
const EnvPrefix = "LIGHTSTACK"

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "Card file (YAML or TOML; default: card.yaml in the config directory)")
	f.String("url", "", "Home Assistant base URL, e.g. http://homeassistant.local:8123")
	f.String("token", "", "Long-lived access token (prefer the LIGHTSTACK_TOKEN variable)")
	f.String("view", "", "View path to start on")
	f.String("log-level", "", "Log level (debug, info, warn, error); silent when empty")
	f.String("log-file", "", "Log file (the dashboard defaults to lightstack.log in the config directory)")
	f.Float64("cell-width", 0, "Pixel width of one terminal column")
	f.Float64("cell-height", 0, "Pixel height of one terminal line")
}

// options are the global settings after flags, environment and the
// settings file have been merged.
type options struct {
	CardPath string
	URL      string
	Token    string
	View     string
	LogLevel string
	LogFile  string
	Grid     layout.Grid

	// urlFromUser is true when URL came from a flag or the environment
	// rather than from the remembered servers.
	urlFromUser bool

	Settings *config.Settings
}

// newViper binds flags to their LIGHTSTACK_* environment variables. A flag
// given on the command line wins over the environment.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

// loadOptions merges flags, environment and settings for cmd.
func loadOptions(cmd *cobra.Command) (*options, error) {
	v, err := newViper(cmd.Flags())
	if err != nil {
		return nil, err
	}

	settings, err := config.LoadSettings()
	if err != nil {
		// a broken settings file should not lock the user out
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		settings = config.NewSettings()
	}
	return resolveOptions(v, settings), nil
}

func resolveOptions(v *viper.Viper, settings *config.Settings) *options {
	o := &options{
		CardPath: strings.TrimSpace(v.GetString("config")),
		URL:      strings.TrimSpace(v.GetString("url")),
		Token:    strings.TrimSpace(v.GetString("token")),
		View:     strings.TrimSpace(v.GetString("view")),
		LogLevel: v.GetString("log-level"),
		LogFile:  v.GetString("log-file"),
		Grid: layout.Grid{
			CellWidthPx:  v.GetFloat64("cell-width"),
			CellHeightPx: v.GetFloat64("cell-height"),
		},
		Settings: settings,
	}
	o.urlFromUser = o.URL != ""

	if settings == nil {
		return o
	}
	if o.URL == "" {
		o.URL = settings.LastURL()
	}
	if prefs := settings.Preferences; prefs != nil {
		if o.CardPath == "" {
			o.CardPath = prefs.CardPath
		}
		if o.Grid.CellWidthPx <= 0 {
			o.Grid.CellWidthPx = prefs.CellWidthPx
		}
		if o.Grid.CellHeightPx <= 0 {
			o.Grid.CellHeightPx = prefs.CellHeightPx
		}
	}
	return o
}

// cardPath returns the card file path, defaulting to the config directory.
func (o *options) cardPath() (string, error) {
	return config.ResolveCardPath(o.CardPath)
}

// logger builds the logger. Full-screen commands own the terminal, so
// their logs go to a file unless one was named.
func (o *options) logger(fullScreen bool) (*zap.Logger, error) {
	opts := logging.Options{Level: o.LogLevel, File: o.LogFile}
	if fullScreen && opts.File == "" && os.Getenv(logging.LogFileEnvVar) == "" {
		if dir, err := config.GetConfigDir(); err == nil {
			opts.File = filepath.Join(dir, "lightstack.log")
		}
	}
	if err := logging.InitializeWith(opts); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return logging.GetLogger(), nil
}

// errNoToken is returned when a command must connect and no token can be
// obtained.
var errNoToken = errors.New("an access token is required: set LIGHTSTACK_TOKEN or pass --token")

// token returns the access token, prompting for it on a terminal.
func (o *options) token() (string, error) {
	if o.Token != "" {
		return o.Token, nil
	}
	if !ui.IsTerminal(os.Stdin) {
		return "", errNoToken
	}
	t, err := ui.ReadToken(os.Stdin, os.Stderr)
	if err != nil {
		if errors.Is(err, ui.ErrNoInput) {
			return "", errNoToken
		}
		return "", err
	}
	o.Token = t
	return t, nil
}

// rememberServer records url as the last server used.
func (o *options) rememberServer(key, name, url, haVersion string) {
	if o.Settings == nil || url == "" {
		return
	}
	o.Settings.RememberServer(key, name, url, haVersion)
	if err := o.Settings.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save settings: %v\n", err)
	}
}
