package command

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yndnr/microcache-go/internal/cli/connection"
	"github.com/yndnr/microcache-go/internal/cli/output"
	"github.com/yndnr/microcache-go/internal/protocol"
)

// BenchResult summarizes a bench run.
type BenchResult struct {
	Clients   int           `json:"clients" yaml:"clients"`
	Requests  int64         `json:"requests" yaml:"requests"`
	Errors    int64         `json:"errors" yaml:"errors"`
	Misses    int64         `json:"misses" yaml:"misses"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	OpsPerSec float64       `json:"ops_per_sec" yaml:"ops_per_sec"`
	P50       time.Duration `json:"p50" yaml:"p50"`
	P99       time.Duration `json:"p99" yaml:"p99"`
	Max       time.Duration `json:"max" yaml:"max"`
}

// BenchCommand returns the bench command.
func BenchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Generate load against the cache server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "clients",
				Value: 4,
				Usage: "concurrent connections",
			},
			&cli.IntFlag{
				Name:  "requests",
				Value: 10000,
				Usage: "total requests across all clients",
			},
			&cli.Float64Flag{
				Name:  "rate",
				Usage: "requests per second across all clients, 0 for unlimited",
			},
			&cli.IntFlag{
				Name:  "keys",
				Value: 1000,
				Usage: "size of the key space",
			},
			&cli.IntFlag{
				Name:  "value-size",
				Value: 32,
				Usage: "value size in bytes",
			},
			&cli.DurationFlag{
				Name:  "ttl",
				Value: protocol.DefaultTTL,
				Usage: "ttl of written keys",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "do not draw progress",
			},
		},
		Action: benchAction,
	}
}

// benchConfig is the parsed bench flags.
type benchConfig struct {
	server    string
	timeout   time.Duration
	clients   int
	requests  int
	rate      float64
	keys      int
	valueSize int
	ttl       time.Duration
}

func benchAction(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	cfg := benchConfig{
		server:    flags.Server,
		timeout:   flags.Timeout,
		clients:   c.Int("clients"),
		requests:  c.Int("requests"),
		rate:      c.Float64("rate"),
		keys:      c.Int("keys"),
		valueSize: c.Int("value-size"),
		ttl:       c.Duration("ttl"),
	}
	if cfg.clients <= 0 || cfg.requests <= 0 || cfg.keys <= 0 || cfg.valueSize <= 0 {
		return errors.New("clients, requests, keys and value-size must be positive")
	}

	var progress *output.Progress
	if !c.Bool("quiet") {
		progress = output.NewProgress(c.App.ErrWriter, "bench", int64(cfg.requests))
	}
	res, err := runBench(c.Context, cfg, progress)
	if err != nil {
		return err
	}
	return render(c.App.Writer, flags, res)
}

// runBench sends cfg.requests requests over cfg.clients connections. Even
// requests are SET and odd requests GET of a random key.
func runBench(ctx context.Context, cfg benchConfig, progress *output.Progress) (BenchResult, error) {
	var limiter *rate.Limiter
	if cfg.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.rate), max(1, cfg.clients))
	}

	value := make([]byte, cfg.valueSize)
	for i := range value {
		value[i] = 'a' + byte(i%26)
	}

	var errCount, misses atomic.Int64
	latencies := make([][]time.Duration, cfg.clients)

	g, gctx := errgroup.WithContext(ctx)
	start := time.Now()
	for w := 0; w < cfg.clients; w++ {
		share := cfg.requests / cfg.clients
		if w < cfg.requests%cfg.clients {
			share++
		}
		g.Go(func() error {
			client, err := connection.Dial(gctx, cfg.server, cfg.timeout)
			if err != nil {
				return err
			}
			defer client.Close()

			lat := make([]time.Duration, 0, share)
			for i := 0; i < share; i++ {
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						return err
					}
				}
				key := fmt.Sprintf("K-%06d", rand.IntN(cfg.keys))

				began := time.Now()
				if i%2 == 0 {
					err = client.Set(gctx, key, value, cfg.ttl)
				} else {
					_, err = client.Get(gctx, key)
				}
				lat = append(lat, time.Since(began))

				var serr *connection.ServerError
				switch {
				case err == nil:
				case errors.Is(err, connection.ErrNotFound):
					misses.Add(1)
				case errors.As(err, &serr):
					errCount.Add(1)
				default:
					return err
				}
				if progress != nil {
					progress.Increment(1)
				}
			}
			latencies[w] = lat
			return nil
		})
	}
	err := g.Wait()
	elapsed := time.Since(start)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return BenchResult{}, err
	}

	res := BenchResult{
		Clients:  cfg.clients,
		Requests: int64(cfg.requests),
		Errors:   errCount.Load(),
		Misses:   misses.Load(),
		Duration: elapsed.Round(time.Millisecond),
	}
	if elapsed > 0 {
		res.OpsPerSec = float64(cfg.requests) / elapsed.Seconds()
	}
	all := slices.Concat(latencies...)
	slices.Sort(all)
	if n := len(all); n > 0 {
		res.P50 = all[n/2]
		res.P99 = all[min(n-1, n*99/100)]
		res.Max = all[n-1]
	}
	return res, nil
}
