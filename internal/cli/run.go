package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/modalkeys/internal/host/terminal"
	"github.com/dshills/modalkeys/internal/logging"
)

func newRunCommand(app *App) *cobra.Command {
	var keymaps []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the terminal demo host",
		Long: `Start a full-screen terminal page driven by the modal engine.

Keys:
  j/k/h/l     scroll (with a count: 5j)
  gg / G      top / bottom
  f           label the visible links, type a label to follow it
  i / <Esc>   enter / leave insert mode
  ctrl-c      quit

The log goes to $XDG_STATE_HOME/modalkeys/modalkeys.log unless
logging.file is set. Editing the config file while running reloads the
bindings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.load(true); err != nil {
				return err
			}
			host, err := terminal.New(terminal.Options{
				Config:       app.Config,
				Manager:      app.Manager,
				ExtraKeymaps: keymaps,
				Logger:       app.Logger,
			})
			if err != nil {
				return err
			}
			defer host.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = logging.WithComponent(logging.WithContext(ctx, app.Logger), "run")

			log := logging.FromContext(ctx)
			log.Info().Str("config", app.Manager.ConfigFile()).Strs("keymaps", keymaps).Msg("starting terminal host")
			if err := host.Run(ctx); err != nil {
				log.Error().Err(err).Msg("terminal host failed")
				return err
			}
			log.Info().Msg("terminal host stopped")
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&keymaps, "keymap", nil, "additional keymap file (repeatable)")
	return cmd
}
