package cli

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/modalkeys/internal/input"
	"github.com/dshills/modalkeys/internal/input/key"
	"github.com/dshills/modalkeys/internal/input/keymap"
)

func newKeysCommand(app *App) *cobra.Command {
	var (
		modeName string
		keymaps  []string
	)

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the effective bindings",
		Long: `List the bindings of every mode in evaluation order: built-in
defaults first, then the files of keymap.dir by name, then the
configured keymap files, then --keymap files.
When two bindings match the same keys, the earlier one wins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.load(false); err != nil {
				return err
			}
			files := slices.Concat(app.Config.Keymap.Files, keymaps)
			registry, err := input.LoadKeymaps(app.Logger, app.Config.Keymap.Dir, files...)
			if err != nil {
				return err
			}

			modes := registry.Modes()
			if modeName != "" {
				modes = []string{modeName}
			}

			t := newTable("Mode", "Keys", "Command", "Repeat", "Description")
			rows := 0
			for _, m := range modes {
				for _, b := range registry.Bindings(m) {
					t.Row(m, bindingKeys(b), b.Command, strconv.FormatBool(b.Repeat), b.Description)
					rows++
				}
			}
			if rows == 0 {
				return fmt.Errorf("no bindings for mode %q", modeName)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, t.Render())
			fmt.Fprintln(out, styleMuted.Render(fmt.Sprintf("%d bindings from %d keymaps", rows, len(registry.Keymaps()))))
			return nil
		},
	}
	cmd.Flags().StringVar(&modeName, "mode", "", "only list this mode")
	cmd.Flags().StringArrayVar(&keymaps, "keymap", nil, "additional keymap file (repeatable)")
	return cmd
}

func bindingKeys(b keymap.Binding) string {
	if b.IsScripted() {
		return "{lua}"
	}
	tokens, err := b.Tokens()
	if err != nil {
		return b.Keys
	}
	return key.Join(tokens)
}
