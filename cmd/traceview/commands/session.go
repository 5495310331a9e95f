package commands

import (
	"github.com/spf13/cobra"

	"github.com/traceviewhq/traceview/config"
	"github.com/traceviewhq/traceview/errors"
	"github.com/traceviewhq/traceview/session"
)

// loadConfig resolves configuration for a command: an explicit
// --config file when given, otherwise the usual search path, with
// --db overriding the capture path either way.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Root().PersistentFlags().GetString("config"); path != "" {
		cfg, err = config.LoadFromFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}

	if db, _ := cmd.Root().PersistentFlags().GetString("db"); db != "" {
		cfg.Database.Path = db
	}
	if cfg.Database.Path == "" {
		return nil, errors.New("no capture given: set --db or database.path in traceview.toml")
	}
	return cfg, nil
}

// openSession loads configuration and opens the capture session.
func openSession(cmd *cobra.Command) (*session.Session, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	sess, err := session.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return sess, cfg, nil
}
