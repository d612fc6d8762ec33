package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"soundblanket/internal/bootstrap"
	"soundblanket/internal/platform/config"
	apperrors "soundblanket/internal/platform/errors"
)

var version = "dev"

type globalFlags struct {
	dataDir    string
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "soundblanket",
		Short:         "Ambient sound mixer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", defaultDataDir(), "directory holding sounds, mixes and logs")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default <data-dir>/"+config.FileName+")")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: trace|debug|info|warn|error")

	root.AddCommand(newTUICmd(flags))
	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newSoundsCmd(flags))
	root.AddCommand(newMixCmd(flags))
	root.AddCommand(newSessionCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "soundblanket")
}

func loadApp(flags *globalFlags, opts bootstrap.Options) (*bootstrap.App, error) {
	cfg, err := config.New(flags.dataDir, flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	return bootstrap.New(cfg, opts)
}

// withApp runs fn against a store-only app with the mixer loop served.
func withApp(flags *globalFlags, fn func(ctx context.Context, app *bootstrap.App) error) error {
	app, err := loadApp(flags, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer app.Close()
	return app.Run(context.Background(), func(ctx context.Context) error {
		return fn(ctx, app)
	})
}

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive mixer",
		RunE: func(_ *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("%w: tui needs an interactive terminal, use run instead", apperrors.ErrInvalidInput)
			}
			app, err := loadApp(flags, bootstrap.Options{Audio: true, LogToFile: true})
			if err != nil {
				return err
			}
			defer app.Close()
			return app.RunTUI(context.Background())
		},
	}
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	var mixName string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Play headless, restoring the last session",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(flags, bootstrap.Options{Audio: true})
			if err != nil {
				return err
			}
			defer app.Close()
			return app.RunHeadless(context.Background(), mixName)
		},
	}
	cmd.Flags().StringVar(&mixName, "mix", "", "saved mix to load after restoring the session")
	return cmd
}

func newSoundsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sounds",
		Short: "List sounds found in the sounds directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				sounds, err := app.LibraryCLI.ListSounds(ctx)
				if err != nil {
					return err
				}
				if len(sounds) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sounds")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, s := range sounds {
					_, _ = fmt.Fprintf(w, "%s\t%s\n", s.Name, s.Path)
				}
				return w.Flush()
			})
		},
	}
}

func newMixCmd(flags *globalFlags) *cobra.Command {
	mix := &cobra.Command{Use: "mix", Short: "Saved mix commands"}

	mix.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved mixes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				names, err := app.MixerCLI.ListMixes(ctx)
				if err != nil {
					return err
				}
				if len(names) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no mixes")
					return nil
				}
				for _, name := range names {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	})

	mix.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show the sounds of a saved mix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.MixerCLI.ShowMix(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Name)
				if !out.SavedAt.IsZero() {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", out.SavedAt.Local().Format("2006-01-02 15:04"))
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, s := range out.Sounds {
					state := "stopped"
					if s.Playing {
						state = "playing"
					}
					vol := "-"
					if s.HasVolume {
						vol = fmt.Sprintf("%.0f%%", s.Volume*100)
					}
					_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", s.Name, state, vol)
				}
				return w.Flush()
			})
		},
	})

	mix.AddCommand(&cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved mix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.MixerCLI.DeleteMix(ctx, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			})
		},
	})
	return mix
}

func newSessionCmd(flags *globalFlags) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Auto-saved session commands"}
	session.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the auto-saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(ctx context.Context, app *bootstrap.App) error {
				err := app.MixerCLI.ClearSession(ctx)
				if errors.Is(err, apperrors.ErrNotFound) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no saved session")
					return nil
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "session cleared")
				return nil
			})
		},
	})
	return session
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "soundblanket "+version)
		},
	}
}
