// Chdtool builds, queries and checks CHD function files.
//
// Usage:
//
//	chdtool build  --keys keys.txt --out keys.chd [--load 0.99] [--seed 1]
//	chdtool query  --func keys.chd KEY...
//	chdtool stats  --func keys.chd
//	chdtool verify --func keys.chd --keys keys.txt [--workers N]
//
// Key files hold one key per line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "chdtool: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:  "chdtool",
		Usage: "Build and inspect minimal perfect hash function files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Log level: debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Log as JSON instead of colored text",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log, err := newLogger(os.Stderr, cmd.String("log-level"), cmd.Bool("json"))
			if err != nil {
				return ctx, err
			}
			return withLogger(ctx, log), nil
		},
		Commands: []*cli.Command{
			buildCommand(),
			queryCommand(),
			statsCommand(),
			verifyCommand(),
		},
	}
}
