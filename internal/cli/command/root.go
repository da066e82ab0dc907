package command

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/microcache-go/internal/cli/config"
	"github.com/yndnr/microcache-go/internal/cli/connection"
	"github.com/yndnr/microcache-go/internal/cli/output"
	"github.com/yndnr/microcache-go/internal/infra/buildinfo"
)

const configKey = "cliConfig"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "microcache-cli",
		Usage:   "microcache command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			GetCommand(),
			SetCommand(),
			DeleteCommand(),
			StatCommand(),
			ProfileCommand(),
			BenchCommand(),
			ServerCommand(),
			ConfigCommand(),
			ReplCommand(),
		},
		Before: loadConfig,
		Action: replAction,
	}
}

// globalFlags returns the global CLI flags. Unset flags fall back to the
// CLI configuration file.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "cache server address (default 127.0.0.1:5000)",
			EnvVars: []string{"MICROCACHE_SERVER"},
		},
		&cli.StringFlag{
			Name:    "admin",
			Usage:   "admin API address (default 127.0.0.1:5080)",
			EnvVars: []string{"MICROCACHE_ADMIN"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout (default 5s)",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "CLI configuration file",
			Value: config.DefaultConfigPath(),
		},
	}
}

// GlobalFlags is the merged view of flags and CLI configuration.
type GlobalFlags struct {
	Server  string
	Admin   string
	Output  output.Format
	Timeout time.Duration
	Config  string
}

func loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

// ParseGlobalFlags extracts global flags from context, filling unset ones
// from the loaded CLI configuration.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg, ok := c.App.Metadata[configKey].(*config.CLIConfig)
	if !ok {
		cfg = config.Default()
	}

	flags := &GlobalFlags{
		Server:  cfg.Server,
		Admin:   cfg.Admin,
		Timeout: cfg.Timeout,
		Config:  c.String("config"),
	}
	if c.IsSet("server") {
		flags.Server = c.String("server")
	}
	if c.IsSet("admin") {
		flags.Admin = c.String("admin")
	}
	if c.IsSet("timeout") {
		flags.Timeout = c.Duration("timeout")
	}
	if flags.Timeout <= 0 {
		flags.Timeout = connection.DefaultTimeout
	}

	format := cfg.Output
	if c.IsSet("output") {
		format = c.String("output")
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	flags.Output = f
	return flags, nil
}

// connect parses the global flags and dials the cache server.
func connect(c *cli.Context) (*connection.Client, *GlobalFlags, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, nil, err
	}
	client, err := connection.Dial(c.Context, flags.Server, flags.Timeout)
	if err != nil {
		return nil, nil, err
	}
	return client, flags, nil
}

func requestContext(c *cli.Context, flags *GlobalFlags) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, flags.Timeout)
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("usage: %s %s", c.Command.FullName(), c.Command.ArgsUsage)
	}
	return nil
}

func render(w io.Writer, flags *GlobalFlags, data any) error {
	return output.NewFormatter(flags.Output).Format(w, data)
}
