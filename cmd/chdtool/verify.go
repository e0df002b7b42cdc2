package main

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/tamirms/chd"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Check that a function file maps every key to a distinct slot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "func", Aliases: []string{"f"}, Usage: "Function file", Required: true},
			&cli.StringFlag{Name: "keys", Aliases: []string{"k"}, Usage: "Key file the function was built from", Required: true},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: runtime.NumCPU(), Usage: "Parallel workers"},
		},
		Action: runVerify,
	}
}

func runVerify(ctx context.Context, cmd *cli.Command) error {
	log := loggerFrom(ctx)

	f, err := chd.ReadFile(cmd.String("func"))
	if err != nil {
		return err
	}
	kf, err := openKeyFile(cmd.String("keys"))
	if err != nil {
		return err
	}
	defer kf.Close()

	src := chd.NewLineKeySource(kf.data())
	keys := make([][]byte, 0, src.NumKeys())
	for range src.NumKeys() {
		k, err := src.Read()
		if err != nil {
			return fmt.Errorf("read keys: %w", err)
		}
		keys = append(keys, k)
	}

	workers := max(int(cmd.Int("workers")), 1)
	if err := verifyKeys(ctx, f, keys, workers); err != nil {
		return err
	}
	log.Info("verified", "keys", len(keys), "range", f.MaxValue(), "workers", workers)
	return nil
}

// verifyKeys fails on the first key that hashes out of range or onto a slot
// already claimed by another key.
func verifyKeys(ctx context.Context, f *chd.Function, keys [][]byte, workers int) error {
	seen := make([]atomic.Bool, f.MaxValue())
	chunk := (len(keys) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		lo := w * chunk
		hi := min(lo+chunk, len(keys))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%4096 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				slot := f.Hash(keys[i])
				if slot >= f.MaxValue() {
					return fmt.Errorf("key %q: slot %d out of range [0, %d)", keys[i], slot, f.MaxValue())
				}
				if seen[slot].Swap(true) {
					return fmt.Errorf("key %q: slot %d already taken", keys[i], slot)
				}
			}
			return nil
		})
	}
	return g.Wait()
}
