package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/shardkv/internal/cli/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Local CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective CLI configuration",
				Action: configShow,
			},
			{
				Name:   "save",
				Usage:  "Write the effective settings to the CLI config file",
				Action: configSave,
			},
		},
	}
}

func effective(c *cli.Context) (*config.CLIConfig, error) {
	s := GetSession(c)
	if s == nil {
		return nil, fmt.Errorf("session not initialized")
	}
	return &config.CLIConfig{
		Server:      s.Server,
		Output:      string(s.Output),
		Timeout:     s.Timeout,
		QueueSize:   s.QueueSize,
		HistoryFile: s.HistoryFile,
	}, nil
}

func configShow(c *cli.Context) error {
	cfg, err := effective(c)
	if err != nil {
		return err
	}
	return GetSession(c).Print(c.App.Writer, cfg)
}

func configSave(c *cli.Context) error {
	cfg, err := effective(c)
	if err != nil {
		return err
	}
	path := c.String("config")
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "saved %s\n", path)
	return nil
}
