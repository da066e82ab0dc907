package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/microcache-go/internal/cli/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Local CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:  "init",
				Usage: "Write a configuration file with the effective settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "overwrite an existing file",
					},
				},
				Action: configInit,
			},
		},
	}
}

func effectiveConfig(flags *GlobalFlags) *config.CLIConfig {
	return &config.CLIConfig{
		Server:  flags.Server,
		Admin:   flags.Admin,
		Output:  string(flags.Output),
		Timeout: flags.Timeout,
	}
}

func configShow(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	return render(c.App.Writer, flags, effectiveConfig(flags))
}

func configInit(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}

	if _, err := os.Stat(flags.Config); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", flags.Config)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := config.Save(effectiveConfig(flags), flags.Config); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %s\n", flags.Config)
	return nil
}
