package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/tabula/core"
	"pkt.systems/tabula/internal/appconfig"
	"pkt.systems/tabula/internal/engine"
	"pkt.systems/tabula/internal/eventbus"
	"pkt.systems/tabula/internal/tui"
	"pkt.systems/tabula/schema"
)

func newEditCmd(cfgPath *string) *cobra.Command {
	var theme string
	cmd := &cobra.Command{
		Use:   "edit [files...]",
		Short: "Open the editor, restoring the previous session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(*cfgPath)
			if err != nil {
				return err
			}
			if theme != "" {
				if _, err := schema.ParseThemeName(theme); err != nil {
					return err
				}
				cfg.UI.Theme = theme
			}

			// The terminal belongs to the editor, so everything logs to the
			// configured file instead of stderr.
			logger, closeLog, err := openLogFile(cfg.Logging)
			if err != nil {
				return err
			}
			defer closeLog()
			ctx := pslog.ContextWithLogger(cmd.Context(), logger)

			st, err := openState(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer st.close()

			buffers := engine.New(logger)
			bus := eventbus.New(logger)
			model := tui.New(ctx, tui.Options{
				Buffers:     buffers,
				Bus:         bus,
				Fs:          afero.NewOsFs(),
				Theme:       schema.ThemeName(cfg.UI.Theme),
				LineNumbers: cfg.UI.LineNumbers,
				Paths:       args,
				Logger:      logger,
			})
			sess, err := core.NewSession(cfg.SessionConfig(), core.SessionDeps{
				Engine:      buffers,
				Files:       core.NewOSFileSystem(),
				Dialogs:     model,
				Store:       st.kv,
				Properties:  st.props,
				Executor:    model.Executor(),
				ClosePolicy: model,
				EventSink:   bus,
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			model.Attach(sess)
			logger.Info("editor starting", "state_dir", cfg.StateDir, "backend", cfg.Store.Backend, "files", len(args))
			err = tui.Run(model)
			logger.Info("editor stopped", "err", err)
			return err
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "override ui.theme")
	return cmd
}

func openLogFile(cfg appconfig.LoggingConfig) (pslog.Logger, func(), error) {
	level, err := appconfig.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	opts := pslog.Options{Mode: pslog.ModeStructured, NoColor: true, MinLevel: level, VerboseFields: true}
	if cfg.File == "" {
		return pslog.NewWithOptions(io.Discard, opts), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return pslog.NewWithOptions(f, opts), func() { _ = f.Close() }, nil
}
