package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/shardkv/pkg/client"
)

// GetResult is the output of get.
type GetResult struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Found bool   `json:"found"`
}

// SetResult is the output of set.
type SetResult struct {
	Key    string `json:"key"`
	Result string `json:"result"`
}

// CountResult is the output of commands returning a count.
type CountResult struct {
	Command string `json:"command"`
	Count   int    `json:"count"`
}

// PingResult is the output of ping.
type PingResult struct {
	Reply   string        `json:"reply"`
	Latency time.Duration `json:"latency"`
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return usageError(c)
			}
			key := c.Args().First()
			return run(c, func(ctx context.Context, s *Session, h *client.Handle) error {
				value, found, err := h.Get(ctx, key)
				if err != nil {
					return err
				}
				return s.Print(c.App.Writer, GetResult{Key: key, Value: string(value), Found: found})
			})
		},
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key to a value",
		ArgsUsage: "KEY VALUE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return usageError(c)
			}
			key, value := c.Args().Get(0), c.Args().Get(1)
			return run(c, func(ctx context.Context, s *Session, h *client.Handle) error {
				if err := h.Set(ctx, key, []byte(value)); err != nil {
					return err
				}
				return s.Print(c.App.Writer, SetResult{Key: key, Result: "OK"})
			})
		},
	}
}

// DelCommand returns the del command.
func DelCommand() *cli.Command {
	return countCommand("del", "Delete keys, printing how many existed",
		func(ctx context.Context, h *client.Handle, keys []string) (int, error) {
			return h.Del(ctx, keys...)
		})
}

// ExistsCommand returns the exists command.
func ExistsCommand() *cli.Command {
	return countCommand("exists", "Count how many of the keys exist",
		func(ctx context.Context, h *client.Handle, keys []string) (int, error) {
			return h.Exists(ctx, keys...)
		})
}

func countCommand(name, usage string, fn func(context.Context, *client.Handle, []string) (int, error)) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "KEY [KEY...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return usageError(c)
			}
			keys := c.Args().Slice()
			return run(c, func(ctx context.Context, s *Session, h *client.Handle) error {
				n, err := fn(ctx, h, keys)
				if err != nil {
					return err
				}
				return s.Print(c.App.Writer, CountResult{Command: name, Count: n})
			})
		},
	}
}

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check the server responds",
		Action: func(c *cli.Context) error {
			return run(c, func(ctx context.Context, s *Session, h *client.Handle) error {
				start := time.Now()
				if err := h.Ping(ctx); err != nil {
					return err
				}
				return s.Print(c.App.Writer, PingResult{Reply: "PONG", Latency: time.Since(start)})
			})
		},
	}
}

// DBSizeCommand returns the dbsize command.
func DBSizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "dbsize",
		Usage: "Show the number of keys on the server",
		Action: func(c *cli.Context) error {
			return run(c, func(ctx context.Context, s *Session, h *client.Handle) error {
				n, err := h.DBSize(ctx)
				if err != nil {
					return err
				}
				return s.Print(c.App.Writer, CountResult{Command: "dbsize", Count: n})
			})
		},
	}
}

func usageError(c *cli.Context) error {
	return fmt.Errorf("%s: wrong number of arguments (usage: %s %s)",
		c.Command.Name, c.Command.Name, c.Command.ArgsUsage)
}
