// Command triecache-bench drives ad hoc load against a triecache.Cache and
// reports its accounting stats. It is a thin cobra CLI layered on top of
// the core engine, kept separate from it.
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/triecache/triecache"
	"github.com/triecache/triecache/config"
)

// seedFromStdin reads "key\tvalue" lines from stdin and stores each pair.
func seedFromStdin(c *triecache.Cache) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		if _, err := c.Store([]byte(parts[0]), []byte(parts[1]), 0); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "triecache-bench",
		Short: "Load-test and inspect a triecache.Cache",
	}
	root.AddCommand(newRunCmd(), newStatsCmd(), newClearSliceCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		numKeys        int
		maxKeys        uint64
		maxBytes       uint64
		snapshotPath   string
		valueSizeBytes int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Store keys with random values, fetch some, then log final stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			c := triecache.New(
				triecache.WithMaxKeys(maxKeys),
				triecache.WithMaxBytes(maxBytes),
			)

			value := make([]byte, valueSizeBytes)
			for i := 0; i < numKeys; i++ {
				key := []byte(fmt.Sprintf("key-%d", i))
				rand.Read(value)
				if _, err := c.Store(key, value, 0); err != nil {
					logger.Error("store failed", zap.Error(err), zap.Int("i", i))
				}
				if i%7 == 0 {
					_, _, _ = c.Fetch(key)
				}
			}

			stats := c.Stats()
			logger.Info("run complete",
				zap.Uint64("numKeys", stats.NumKeys),
				zap.Uint64("numEvictions", stats.NumEvictions),
				zap.Uint64("numIndexes", stats.NumIndexes),
				zap.Uint64("dataSize", stats.DataSize),
			)

			if snapshotPath != "" {
				if err := config.Snapshot(snapshotPath, stats); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&numKeys, "keys", 10000, "number of keys to store")
	cmd.Flags().Uint64Var(&maxKeys, "max-keys", 0, "MaxKeys budget (0 = unbounded)")
	cmd.Flags().Uint64Var(&maxBytes, "max-bytes", 0, "MaxBytes budget (0 = unbounded)")
	cmd.Flags().IntVar(&valueSizeBytes, "value-size", 64, "size in bytes of each stored value")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "optional path to write a JSON stats snapshot")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report the Options a config file would construct",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(configPath)
			if err != nil {
				return err
			}
			opts := f.Options()
			fmt.Printf("maxKeys=%d maxBytes=%d maxBuckets=%d reindexScatter=%d\n",
				opts.MaxKeys, opts.MaxBytes, opts.MaxBuckets, opts.ReindexScatter)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "triecache.hujson", "path to a HuJSON config file")
	return cmd
}

func newClearSliceCmd() *cobra.Command {
	var (
		slice1 uint8
		slice2 uint8
		thin   bool
	)

	cmd := &cobra.Command{
		Use:   "clear-slice",
		Short: "Seed a cache from stdin (key\\tvalue lines) and clear a slice",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := triecache.New()
			if err := seedFromStdin(c); err != nil {
				return err
			}
			before := c.Stats().NumKeys

			if thin {
				c.ClearSlices(slice1, slice2)
			} else {
				c.ClearSlice(slice1)
			}

			after := c.Stats().NumKeys
			fmt.Printf("numKeys before=%d after=%d removed=%d\n", before, after, before-after)
			return nil
		},
	}

	cmd.Flags().Uint8Var(&slice1, "slice1", 0, "first slice byte")
	cmd.Flags().Uint8Var(&slice2, "slice2", 0, "second slice byte (thin clears only)")
	cmd.Flags().BoolVar(&thin, "thin", false, "issue a thin (four-nibble) clear instead of a thick one")
	return cmd
}
