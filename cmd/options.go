package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/carcustomizer/internal/prompts"
	"github.com/spf13/cobra"
)

func newOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Print the preset catalog",
		Long: `Prints every paint color, paint target, wheel style, body kit, vinyl and
background preset as YAML. Values and labels can be used in --mod selections
and recipe steps.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := prompts.Default().YAML()
			if err != nil {
				return fmt.Errorf("failed to render catalog: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
