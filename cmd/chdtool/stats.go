package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/tamirms/chd"
	"github.com/urfave/cli/v3"
)

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Print size statistics for a function file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "func", Aliases: []string{"f"}, Usage: "Function file", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := chd.ReadFile(cmd.String("func"))
			if err != nil {
				return err
			}
			st := f.Stats()
			w := tabwriter.NewWriter(cmd.Root().Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "seed\t0x%08x\n", f.Seed())
			fmt.Fprintf(w, "range\t%d\n", st.MaxValue)
			fmt.Fprintf(w, "buckets\t%d\n", st.NumBuckets)
			fmt.Fprintf(w, "code bits\t%d\n", st.CodeBits)
			fmt.Fprintf(w, "remainder bits\t%d\n", st.RemainderBits)
			fmt.Fprintf(w, "size\t%d bytes\n", st.SizeBytes)
			fmt.Fprintf(w, "bits per slot\t%.3f\n", st.BitsPerValue)
			return w.Flush()
		},
	}
}
