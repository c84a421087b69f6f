package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vytor/duodash/internal/achievement"
	"github.com/vytor/duodash/internal/normalize"
)

type rootFlags struct {
	timezone string
	now      string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "duoctl",
		Short: "Inspect raw learning-platform records offline",
		Long: `duoctl runs the DuoDash normalizer and achievement engine on local files.

USAGE
  duoctl [COMMAND] <file|->

COMMANDS
  normalize              Print the canonical progress view of a raw user record
  stats                  Print achievement statistics and badges

EXAMPLES
  duoctl normalize user.json
  curl -s .../users/owl | duoctl stats -
  duoctl stats --json history.json`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.timezone, "timezone", normalize.DefaultTimeZone, "IANA zone used for date bucketing")
	root.PersistentFlags().StringVar(&flags.now, "now", "", "evaluate as of this RFC3339 instant instead of the wall clock")

	root.AddCommand(newNormalizeCmd(flags))
	root.AddCommand(newStatsCmd(flags))
	return root
}

// clock resolves the --now flag.
func (f *rootFlags) clock() (func() time.Time, error) {
	if f.now == "" {
		return time.Now, nil
	}
	at, err := time.Parse(time.RFC3339, f.now)
	if err != nil {
		return nil, fmt.Errorf("invalid --now %q: %w", f.now, err)
	}
	return func() time.Time { return at }, nil
}

func (f *rootFlags) normalizer() (*normalize.Normalizer, error) {
	loc, err := normalize.LoadLocation(f.timezone)
	if err != nil {
		return nil, err
	}
	now, err := f.clock()
	if err != nil {
		return nil, err
	}
	return normalize.New(normalize.WithLocation(loc), normalize.WithClock(now)), nil
}

func (f *rootFlags) engine() (*achievement.Engine, error) {
	loc, err := normalize.LoadLocation(f.timezone)
	if err != nil {
		return nil, err
	}
	now, err := f.clock()
	if err != nil {
		return nil, err
	}
	return achievement.NewEngine(achievement.WithLocation(loc), achievement.WithClock(now)), nil
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
