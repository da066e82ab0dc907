package command

import (
	"errors"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/microcache-go/internal/cli/connection"
	"github.com/yndnr/microcache-go/internal/protocol"
	"github.com/yndnr/microcache-go/pkg/profile"
)

func codecFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "codec",
		Aliases: []string{"c"},
		Value:   "json",
		Usage:   "payload codec: json or binary",
	}
}

// ProfileCommand returns the profile subcommand group.
func ProfileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Store and load user profiles",
		Subcommands: []*cli.Command{
			{
				Name:      "put",
				Usage:     "Encode a profile and store it",
				ArgsUsage: "KEY",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "profile ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "user name",
						Required: true,
					},
					&cli.DurationFlag{
						Name:    "ttl",
						Aliases: []string{"t"},
						Value:   protocol.DefaultTTL,
						Usage:   "time to live",
					},
					codecFlag(),
				},
				Action: profilePut,
			},
			{
				Name:      "get",
				Usage:     "Load and decode a profile",
				ArgsUsage: "KEY",
				Flags:     []cli.Flag{codecFlag()},
				Action:    profileGet,
			},
		},
	}
}

func profilePut(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	codec, err := profile.CodecByName(c.String("codec"))
	if err != nil {
		return err
	}

	p := profile.Profile{
		ID:        int32(c.Int("id")),
		UserName:  c.String("name"),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	payload, err := codec.Marshal(p)
	if err != nil {
		return err
	}

	client, flags, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := requestContext(c, flags)
	defer cancel()

	if err := client.Set(ctx, c.Args().First(), payload, c.Duration("ttl")); err != nil {
		return err
	}
	return render(c.App.Writer, flags, p)
}

func profileGet(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	codec, err := profile.CodecByName(c.String("codec"))
	if err != nil {
		return err
	}

	client, flags, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := requestContext(c, flags)
	defer cancel()

	payload, err := client.Get(ctx, c.Args().First())
	if errors.Is(err, connection.ErrNotFound) {
		return cli.Exit("(nil)", 1)
	}
	if err != nil {
		return err
	}

	p, err := codec.Unmarshal(payload)
	if err != nil {
		return err
	}
	return render(c.App.Writer, flags, p)
}
