package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/microcache-go/internal/cli/repl"
)

// ReplCommand returns the repl command.
func ReplCommand() *cli.Command {
	return &cli.Command{
		Name:   "repl",
		Usage:  "Start an interactive session",
		Action: replAction,
	}
}

func replAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}
	client, flags, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Fprintf(c.App.Writer, "connected to %s\n", flags.Server)
	r := repl.New(client.Do,
		repl.WithIO(c.App.Reader, c.App.Writer),
		repl.WithHistory(repl.NewHistory(repl.DefaultHistoryFile())),
	)
	return r.Run(c.Context)
}
