package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tamirms/chd"
	"github.com/urfave/cli/v3"
)

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "Print the slot of each key argument",
		ArgsUsage: "KEY...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "func", Aliases: []string{"f"}, Usage: "Function file", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return errors.New("query: at least one key is required")
			}
			f, err := chd.ReadFile(cmd.String("func"))
			if err != nil {
				return err
			}
			for _, key := range cmd.Args().Slice() {
				fmt.Fprintf(cmd.Root().Writer, "%s\t%d\n", key, f.Hash([]byte(key)))
			}
			return nil
		},
	}
}
