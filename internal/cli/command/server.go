package command

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/microcache-go/internal/cli/connection"
	"github.com/yndnr/microcache-go/internal/cli/output"
	"github.com/yndnr/microcache-go/internal/server/httpserver/handler"
)

// ServerCommand returns the server subcommand group, backed by the admin
// API.
func ServerCommand() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"srv"},
		Usage:   "Query the server admin API",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show store, worker and connection statistics",
				Action: serverStats,
			},
			{
				Name:  "connections",
				Usage: "List tracked connections",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "alive",
						Usage: "filter by liveness: true or false",
					},
				},
				Action: serverConnections,
			},
		},
	}
}

// adminGet fetches path from the admin API. Table output decodes into
// typed; json and yaml output keep the server's field names.
func adminGet(c *cli.Context, path string, typed any) (any, *GlobalFlags, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := requestContext(c, flags)
	defer cancel()

	var raw json.RawMessage
	if err := connection.NewAdminClient(flags.Admin, flags.Timeout).Get(ctx, path, &raw); err != nil {
		return nil, nil, err
	}
	if flags.Output != output.FormatTable {
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return nil, nil, err
		}
		return generic, flags, nil
	}
	if err := json.Unmarshal(raw, typed); err != nil {
		return nil, nil, fmt.Errorf("parse response data: %w", err)
	}
	return typed, flags, nil
}

func serverStats(c *cli.Context) error {
	var stats handler.StatsResponse
	data, flags, err := adminGet(c, "/v1/stats", &stats)
	if err != nil {
		return err
	}
	if flags.Output == output.FormatTable {
		data = statsTable(&stats)
	}
	return render(c.App.Writer, flags, data)
}

func statsTable(s *handler.StatsResponse) *output.Table {
	t := &output.Table{Headers: []string{"METRIC", "VALUE"}}
	u := func(v uint64) string { return strconv.FormatUint(v, 10) }
	t.AddRow("store.gets", u(s.Store.Gets))
	t.AddRow("store.sets", u(s.Store.Sets))
	t.AddRow("store.deletes", u(s.Store.Deletes))
	t.AddRow("store.keys", strconv.Itoa(s.Store.Keys))
	t.AddRow("queue.depth", strconv.Itoa(s.QueueDepth))
	t.AddRow("workers.read", u(s.Workers.Read))
	t.AddRow("workers.good", u(s.Workers.Good))
	t.AddRow("workers.failed", u(s.Workers.Failed))
	t.AddRow("connections.accepted", u(s.Connections.Accepted))
	t.AddRow("connections.active", u(s.Connections.Active))
	t.AddRow("connections.closed", u(s.Connections.Closed))
	t.AddRow("connections.closed_by_server", u(s.Connections.ClosedByServer))
	t.AddRow("connections.commands", u(s.Connections.Commands))
	t.AddRow("connections.reads", u(s.Connections.Reads))
	t.AddRow("connections.bytes_read", u(s.Connections.BytesRead))
	t.AddRow("build.version", s.Build.Version)
	t.AddRow("uptime", s.Uptime)
	return t
}

func serverConnections(c *cli.Context) error {
	path := "/v1/connections"
	if alive := c.String("alive"); alive != "" {
		path += "?" + url.Values{"alive": {alive}}.Encode()
	}

	var resp handler.ConnectionsResponse
	data, flags, err := adminGet(c, path, &resp)
	if err != nil {
		return err
	}
	if flags.Output == output.FormatTable {
		if err := render(c.App.Writer, flags, resp.Connections); err != nil {
			return err
		}
		_, err := fmt.Fprintf(c.App.Writer, "\nTotal: %d connections\n", resp.Count)
		return err
	}
	return render(c.App.Writer, flags, data)
}
