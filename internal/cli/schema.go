package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/modalkeys/internal/config"
)

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "schema [keymap|config]",
		Short:     "Print a JSON schema",
		Long:      `Print the JSON schema of keymap files (default) or of the config file.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"keymap", "config"},
		RunE: func(cmd *cobra.Command, args []string) error {
			schema := config.KeymapSchema()
			if len(args) == 1 && args[0] == "config" {
				schema = config.ConfigSchema()
			}
			data, err := config.MarshalSchema(schema)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
