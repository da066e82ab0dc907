package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/microcache-go/internal/cli/connection"
	"github.com/yndnr/microcache-go/internal/protocol"
)

// Entry is a key and its value as printed by get.
type Entry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "KEY",
		Action:    getAction,
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a value under a key",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "ttl",
				Aliases: []string{"t"},
				Value:   protocol.DefaultTTL,
				Usage:   "time to live, rounded up to whole seconds",
			},
		},
		Action: setAction,
	}
}

// DeleteCommand returns the delete command.
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"del"},
		Usage:     "Delete a key",
		ArgsUsage: "KEY",
		Action:    deleteAction,
	}
}

// StatCommand returns the stat command.
func StatCommand() *cli.Command {
	return &cli.Command{
		Name:   "stat",
		Usage:  "Show the server operation counters",
		Action: statAction,
	}
}

func getAction(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	client, flags, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := requestContext(c, flags)
	defer cancel()

	key := c.Args().First()
	value, err := client.Get(ctx, key)
	if errors.Is(err, connection.ErrNotFound) {
		fmt.Fprintln(c.App.Writer, "(nil)")
		return nil
	}
	if err != nil {
		return err
	}
	return render(c.App.Writer, flags, Entry{Key: key, Value: string(value)})
}

func setAction(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	client, flags, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := requestContext(c, flags)
	defer cancel()

	if err := client.Set(ctx, c.Args().Get(0), []byte(c.Args().Get(1)), c.Duration("ttl")); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "OK")
	return nil
}

func deleteAction(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	client, flags, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := requestContext(c, flags)
	defer cancel()

	if err := client.Delete(ctx, c.Args().First()); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "OK")
	return nil
}

func statAction(c *cli.Context) error {
	client, flags, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := requestContext(c, flags)
	defer cancel()

	st, err := client.Stat(ctx)
	if err != nil {
		return err
	}
	return render(c.App.Writer, flags, st)
}
