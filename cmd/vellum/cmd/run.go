package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/drake/vellum/frontend"
	"github.com/drake/vellum/frontend/gui"
	"github.com/drake/vellum/frontend/tui"
	"github.com/drake/vellum/session"
	"github.com/drake/vellum/vconfig"
)

// newRunCmd builds the connect-and-run command, which also backs the
// bare root invocation (spec §6: character name is a positional arg,
// everything else is a flag with a config-file fallback).
func newRunCmd() *cobra.Command {
	var (
		direct     bool
		account    string
		password   string
		game       string
		useGUI     bool
		relayHost  string
		relayPort  int
		rawLog     bool
	)

	cmd := &cobra.Command{
		Use:   "run [character]",
		Short: "Connect and run the client",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			character := ""
			if len(args) == 1 {
				character = args[0]
			}

			settings, err := vconfig.Load(character)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg := session.Config{
				Settings:     settings,
				Direct:       direct || settings.Direct.Value,
				Account:      firstNonEmpty(account, os.Getenv("VELLUM_ACCOUNT")),
				Password:     firstNonEmpty(password, os.Getenv("VELLUM_PASSWORD")),
				Character:    firstNonEmpty(character, settings.CharacterName.Value),
				Game:         firstNonEmpty(game, settings.Game.Value),
				RelayHost:    firstNonEmpty(relayHost, settings.Host.Value, "localhost"),
				RelayPort:    firstPositive(relayPort, settings.Port.Value, 8000),
				EnableRawLog: rawLog,
			}
			if cfg.Direct && (cfg.Account == "" || cfg.Password == "") {
				return fmt.Errorf("--direct requires --account and --password (or VELLUM_ACCOUNT/VELLUM_PASSWORD)")
			}

			var fe frontend.Frontend
			if useGUI {
				fe = gui.New()
			} else {
				fe = tui.New()
			}

			sess, err := session.New(fe, cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if useGUI {
				return runGUI(ctx, fe.(*gui.GUI), sess)
			}
			return runTUI(ctx, fe.(*tui.TUI), sess)
		},
	}

	cmd.Flags().BoolVar(&direct, "direct", false, "Connect directly to the game, bypassing the local relay")
	cmd.Flags().StringVar(&account, "account", "", "Account name (direct mode only)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (direct mode only)")
	cmd.Flags().StringVar(&game, "game", "", "Game code or name, e.g. \"prime\" or \"GS3\" (direct mode only)")
	cmd.Flags().BoolVar(&useGUI, "gui", false, "Use the desktop GUI frontend instead of the terminal UI")
	cmd.Flags().StringVar(&relayHost, "relay-host", "", "Relay host (non-direct mode; default localhost)")
	cmd.Flags().IntVar(&relayPort, "relay-port", 0, "Relay port (non-direct mode)")
	cmd.Flags().BoolVar(&rawLog, "raw-log", false, "Log every raw server line to disk")

	return cmd
}

func runTUI(ctx context.Context, t *tui.TUI, sess *session.Session) error {
	t.Start()
	err := sess.Run(ctx)
	<-t.Done()
	return err
}

// runGUI drives Ebiten's blocking game loop on this goroutine (required:
// Ebiten must own the main OS thread) while the session loop runs on a
// second goroutine, stopped by cancelling ctx once the window closes.
func runGUI(ctx context.Context, g *gui.GUI, sess *session.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- sess.Run(ctx) }()

	runErr := g.Run()
	cancel()
	sessErr := <-errCh
	if runErr != nil {
		return runErr
	}
	return sessErr
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
