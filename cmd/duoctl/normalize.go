package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newNormalizeCmd(flags *rootFlags) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "normalize <file|->",
		Short: "Print the canonical progress view of a raw user record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			n, err := flags.normalizer()
			if err != nil {
				return err
			}
			progress, err := n.NormalizeJSON(data)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				encoder.SetIndent("", "  ")
			}
			return encoder.Encode(progress)
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "single-line JSON output")
	return cmd
}
