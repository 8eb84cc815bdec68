package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/shardkv/internal/cli/config"
	"github.com/yndnr/shardkv/internal/cli/output"
	"github.com/yndnr/shardkv/internal/cli/repl"
	"github.com/yndnr/shardkv/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return newApp(nil)
}

// newApp builds the command tree. A non-nil shared session is reused
// instead of building one from flags; interactive mode runs each line
// through such an app.
func newApp(shared *Session) *cli.App {
	app := &cli.App{
		Name:    "shardkv-cli",
		Usage:   "shardkv command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			GetCommand(),
			SetCommand(),
			DelCommand(),
			ExistsCommand(),
			PingCommand(),
			DBSizeCommand(),
			BenchCommand(),
			ConfigCommand(),
		},
		Before: func(c *cli.Context) error {
			if shared != nil {
				c.App.Metadata[sessionKey] = shared
				return nil
			}
			s, err := newSession(c)
			if err != nil {
				return err
			}
			c.App.Metadata[sessionKey] = s
			return nil
		},
		After: func(c *cli.Context) error {
			if shared != nil {
				return nil
			}
			if s := GetSession(c); s != nil {
				return s.Close()
			}
			return nil
		},
		Action: interactive,
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	defaults := config.Default()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "shardkv server address (host:port)",
			EnvVars: []string{"SHARDKV_SERVER"},
			Value:   defaults.Server,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			EnvVars: []string{"SHARDKV_OUTPUT"},
			Value:   defaults.Output,
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Per-command timeout",
			EnvVars: []string{"SHARDKV_TIMEOUT"},
			Value:   defaults.Timeout,
		},
		&cli.IntFlag{
			Name:  "queue-size",
			Usage: "Command queue capacity of the multiplexed connection",
			Value: defaults.QueueSize,
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file",
			EnvVars: []string{"SHARDKV_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:  "history",
			Usage: "Interactive history file (empty to disable)",
			Value: defaults.HistoryFile,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server      string
	Output      string
	Timeout     time.Duration
	QueueSize   int
	Config      string
	HistoryFile string
}

// ParseGlobalFlags extracts global flags from context. Settings not given
// on the command line or in the environment come from the CLI config file.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	flags := &GlobalFlags{
		Server:      cfg.Server,
		Output:      cfg.Output,
		Timeout:     cfg.Timeout,
		QueueSize:   cfg.QueueSize,
		Config:      c.String("config"),
		HistoryFile: cfg.HistoryFile,
	}
	if c.IsSet("server") {
		flags.Server = c.String("server")
	}
	if c.IsSet("output") {
		flags.Output = c.String("output")
	}
	if c.IsSet("timeout") {
		flags.Timeout = c.Duration("timeout")
	}
	if c.IsSet("queue-size") {
		flags.QueueSize = c.Int("queue-size")
	}
	if c.IsSet("history") {
		flags.HistoryFile = c.String("history")
	}
	return flags, nil
}

func newSession(c *cli.Context) (*Session, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, err
	}
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return nil, err
	}
	return &Session{
		Server:      flags.Server,
		Output:      format,
		Timeout:     flags.Timeout,
		QueueSize:   flags.QueueSize,
		HistoryFile: flags.HistoryFile,
	}, nil
}

// interactive runs the REPL when no command is given.
func interactive(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}
	s := GetSession(c)
	if s == nil {
		return fmt.Errorf("session not initialized")
	}

	var names []string
	for _, cmd := range c.App.Commands {
		if cmd.Name != "help" {
			names = append(names, cmd.Name)
		}
	}

	exec := func(ctx context.Context, args []string) error {
		sub := newApp(s)
		sub.Writer = c.App.Writer
		sub.ErrWriter = c.App.ErrWriter
		sub.HideVersion = true
		return sub.RunContext(ctx, append([]string{c.App.Name}, args...))
	}

	r := repl.New(c.App.Reader, c.App.Writer, exec,
		repl.WithPrompt(s.Server+"> "),
		repl.WithCommands(names...),
		repl.WithHistoryFile(s.HistoryFile),
	)
	return r.Run(c.Context)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
