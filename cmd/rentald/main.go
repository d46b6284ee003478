// Command rentald runs the library rental engine: the HTTP API, the overdue scanner,
// the notification relay and the schema migrations.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "rentald",
		Usage: "library book rental engine",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  flagEnvFile,
				Usage: "dotenv files to load before reading the environment",
				Value: cli.NewStringSlice(".env"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			scanOverdueCommand(),
			notifyRelayCommand(),
			tokenCommand(),
		},
	}
}
