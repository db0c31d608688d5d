package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/modalkeys/internal/input/key"
)

func newNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <spec>...",
		Short: "Show the canonical tokens of key specifications",
		Long: `Parse key specifications the way keymap files do and print their
canonical tokens.

Examples:
  modalkeys normalize gg '<C-a>' '<2-LeftMouse>'
  modalkeys normalize '<c-s-X>'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			t := newTable("Spec", "Tokens", "Count")

			var errs []error
			for _, spec := range args {
				tokens, err := key.ParseSpec(spec)
				if err != nil {
					errs = append(errs, err)
					t.Row(spec, styleError.Render(err.Error()), "-")
					continue
				}
				t.Row(spec, styleToken.Render(key.Join(tokens)), fmt.Sprint(len(tokens)))
			}
			fmt.Fprintln(out, t.Render())
			return errors.Join(errs...)
		},
	}
}
