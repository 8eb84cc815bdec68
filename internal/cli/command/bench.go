package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/shardkv/internal/cli/output"
	"github.com/yndnr/shardkv/pkg/client"
)

// BenchResult summarises a bench run.
type BenchResult struct {
	Op         string        `json:"op"`
	Clients    int           `json:"clients"`
	Requests   int           `json:"requests"`
	Errors     int64         `json:"errors"`
	Duration   time.Duration `json:"duration"`
	Throughput float64       `json:"throughput"`
	P50        time.Duration `json:"p50"`
	P99        time.Duration `json:"p99"`
	Max        time.Duration `json:"max"`
}

type benchOp func(ctx context.Context, h *client.Handle, n int) error

// BenchCommand returns the bench command.
func BenchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Run concurrent callers through one multiplexed connection",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "clients", Aliases: []string{"n"}, Value: 50, Usage: "Concurrent callers"},
			&cli.IntFlag{Name: "requests", Aliases: []string{"r"}, Value: 10000, Usage: "Total requests"},
			&cli.StringFlag{Name: "op", Value: "set", Usage: "Operation: set, get, ping"},
			&cli.IntFlag{Name: "data-size", Aliases: []string{"d"}, Value: 16, Usage: "Value size in bytes for set"},
			&cli.IntFlag{Name: "keyspace", Value: 1000, Usage: "Number of distinct keys"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Hide the progress bar"},
		},
		Action: benchAction,
	}
}

func benchAction(c *cli.Context) error {
	s := GetSession(c)
	if s == nil {
		return fmt.Errorf("session not initialized")
	}

	clients, requests := c.Int("clients"), c.Int("requests")
	if clients < 1 || requests < 1 {
		return fmt.Errorf("bench: clients and requests must be positive")
	}
	op, err := newBenchOp(c.String("op"), c.Int("data-size"), max(c.Int("keyspace"), 1))
	if err != nil {
		return err
	}

	dialCtx, cancel := s.withTimeout(c.Context)
	h, err := s.Handle(dialCtx)
	cancel()
	if err != nil {
		return err
	}

	var progress *output.Progress
	if !c.Bool("quiet") && s.Output == output.FormatTable {
		progress = output.NewProgress(c.App.ErrWriter, "bench "+c.String("op"), int64(requests))
	}

	latencies := make([][]time.Duration, clients)
	var next, failed atomic.Int64
	g, ctx := errgroup.WithContext(c.Context)

	start := time.Now()
	for i := 0; i < clients; i++ {
		caller := h.Clone()
		g.Go(func() error {
			defer caller.Close()
			for {
				n := int(next.Add(1) - 1)
				if n >= requests {
					return nil
				}

				opCtx, cancel := s.withTimeout(ctx)
				t := time.Now()
				err := op(opCtx, caller, n)
				cancel()
				if err != nil {
					// Server error replies are counted; anything else
					// means the connection is unusable.
					var se *client.ServerError
					if !errors.As(err, &se) {
						return fmt.Errorf("bench request %d: %w", n, err)
					}
					failed.Add(1)
				}
				latencies[i] = append(latencies[i], time.Since(t))
				if progress != nil {
					progress.Add(1)
				}
			}
		})
	}
	err = g.Wait()
	elapsed := time.Since(start)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return err
	}

	all := slices.Concat(latencies...)
	slices.Sort(all)
	result := BenchResult{
		Op:         c.String("op"),
		Clients:    clients,
		Requests:   requests,
		Errors:     failed.Load(),
		Duration:   elapsed.Round(time.Millisecond),
		Throughput: float64(requests) / elapsed.Seconds(),
		P50:        percentile(all, 50),
		P99:        percentile(all, 99),
		Max:        all[len(all)-1],
	}
	return s.Print(c.App.Writer, result)
}

func newBenchOp(name string, size, keyspace int) (benchOp, error) {
	key := func(n int) string {
		return "bench:" + strconv.Itoa(n%keyspace)
	}

	switch name {
	case "set":
		value := bytes.Repeat([]byte("x"), max(size, 0))
		return func(ctx context.Context, h *client.Handle, n int) error {
			return h.Set(ctx, key(n), value)
		}, nil
	case "get":
		return func(ctx context.Context, h *client.Handle, n int) error {
			_, _, err := h.Get(ctx, key(n))
			return err
		}, nil
	case "ping":
		return func(ctx context.Context, h *client.Handle, _ int) error {
			return h.Ping(ctx)
		}, nil
	default:
		return nil, fmt.Errorf("bench: unknown op %q (want set, get or ping)", name)
	}
}

// percentile returns the p-th percentile of sorted.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := (len(sorted)*p + 99) / 100
	return sorted[max(idx-1, 0)]
}
