package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tamirms/chd"
	"github.com/urfave/cli/v3"
)

func buildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build a function file from a newline-separated key file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "keys", Aliases: []string{"k"}, Usage: "Key file, one key per line", Required: true},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output function file", Required: true},
			&cli.Float64Flag{Name: "load", Value: 0.99, Usage: "Load factor, clamped to [0.5, 0.99]"},
			&cli.Uint64Flag{Name: "seed", Value: 0x1234567890abcdef, Usage: "Construction RNG seed"},
		},
		Action: runBuild,
	}
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	log := loggerFrom(ctx)

	kf, err := openKeyFile(cmd.String("keys"))
	if err != nil {
		return err
	}
	defer kf.Close()

	src := chd.NewLineKeySource(kf.data())
	log.Info("building", "keys", src.NumKeys(), "load", cmd.Float64("load"))

	start := time.Now()
	f, err := chd.Build(ctx, src,
		chd.WithLoadFactor(cmd.Float64("load")),
		chd.WithSeed(cmd.Uint64("seed")),
		chd.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	elapsed := time.Since(start)

	out := cmd.String("out")
	if err := chd.WriteFile(out, f); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	st := f.Stats()
	log.Info("wrote function",
		"path", out,
		"range", st.MaxValue,
		"buckets", st.NumBuckets,
		"bits_per_key", fmt.Sprintf("%.3f", st.BitsPerValue),
		"elapsed", elapsed.Round(time.Millisecond),
	)
	return nil
}
