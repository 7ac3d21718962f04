package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/activhome/lightstack/internal/config"
	"github.com/activhome/lightstack/internal/discovery"
	"github.com/activhome/lightstack/internal/logging"
	"github.com/activhome/lightstack/internal/tui"
)

func runDashboard(cmd *cobra.Command, args []string) error {
	o, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	logger, err := o.logger(true)
	if err != nil {
		return err
	}
	defer logging.Sync()

	path, err := o.cardPath()
	if err != nil {
		return err
	}

	watchPath := path
	dash, err := config.LoadOrExample(path)
	switch {
	case errors.Is(err, config.ErrNoCard):
		fmt.Fprintf(os.Stderr, "No card file at %s, showing an example card.\n", path)
		fmt.Fprintln(os.Stderr, "Use 'lightstack rows add <entity>' to create one.")
		watchPath = ""
	case err != nil:
		return fmt.Errorf("failed to load card: %w", err)
	}

	if o.URL == "" && o.Settings != nil && o.Settings.Preferences != nil && !o.Settings.Preferences.AutoDiscover {
		return errors.New("no Home Assistant URL: pass --url or set LIGHTSTACK_URL")
	}

	token, err := o.token()
	if err != nil {
		return err
	}

	if o.urlFromUser {
		o.rememberServer("", "", o.URL, "")
	}

	logger.Info("Starting dashboard",
		zap.String("card", path),
		zap.String("url", o.URL),
		zap.Int("views", len(dash.Views)))

	return tui.Run(tui.Options{
		Dashboard: dash,
		CardPath:  watchPath,
		ViewPath:  o.View,
		URL:       o.URL,
		Token:     token,
		Grid:      o.Grid,
		Logger:    logger,
		Scan:      scanner(o, logger).Scan,
		OnSelect: func(inst *discovery.Instance) {
			o.rememberServer(inst.UUID, inst.Name, inst.URL(), inst.Version)
		},
	})
}

// scanner returns an mDNS scanner using the configured timeout.
func scanner(o *options, logger *zap.Logger) *discovery.Scanner {
	s := discovery.NewScanner()
	s.Logger = logger.Named("discovery")
	if o.Settings != nil && o.Settings.Preferences != nil && o.Settings.Preferences.DiscoverTimeout > 0 {
		s.Timeout = secondsDuration(o.Settings.Preferences.DiscoverTimeout)
	}
	return s
}
