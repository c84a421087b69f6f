package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vytor/duodash/internal/achievement"
	"github.com/vytor/duodash/internal/models"
	"github.com/vytor/duodash/internal/rawdata"
)

type statsReport struct {
	Stats    models.AchievementStats `json:"stats"`
	Badges   []models.Badge          `json:"badges"`
	Unlocked int                     `json:"unlocked"`
}

func newStatsCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats <file|->",
		Short: "Print achievement statistics and badges",
		Long: `Compute streaks, milestones and badges.

The input is either a JSON array of {"date", "xp", "time"} entries or a raw
user record, whose yearly history is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			series, err := seriesFrom(flags, data)
			if err != nil {
				return err
			}
			engine, err := flags.engine()
			if err != nil {
				return err
			}

			stats := engine.Compute(series)
			badges := achievement.Badges(stats)
			report := statsReport{Stats: stats, Badges: badges, Unlocked: achievement.UnlockedCount(badges)}

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(report)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), renderReport(report))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output statistics in JSON format")
	return cmd
}

func seriesFrom(flags *rootFlags, data []byte) ([]achievement.DailyXP, error) {
	v, err := rawdata.Decode(data)
	if err != nil {
		return nil, err
	}
	if series, ok := achievement.SeriesFromRaw(v); ok {
		return series, nil
	}
	n, err := flags.normalizer()
	if err != nil {
		return nil, err
	}
	progress, err := n.Normalize(v)
	if err != nil {
		return nil, err
	}
	return achievement.SeriesFromProgress(progress), nil
}
