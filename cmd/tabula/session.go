package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/tabula/internal/appconfig"
	"pkt.systems/tabula/internal/lock"
	"pkt.systems/tabula/internal/persist"
	"pkt.systems/tabula/schema"
)

// state is the locked persistence of one state directory.
type state struct {
	lock  *lock.Lock
	kv    persist.KV
	props *persist.Properties
	cache *persist.Cache
}

func openState(ctx context.Context, cfg appconfig.Config, logger pslog.Logger) (*state, error) {
	l, err := lock.Acquire(ctx, cfg.StateDir)
	if err != nil {
		return nil, err
	}
	kv, err := persist.OpenKV(persist.Backend(cfg.Store.Backend), cfg.StateDir, cfg.Store.Path, logger)
	if err != nil {
		_ = l.Release()
		return nil, err
	}
	props, err := persist.NewProperties(cfg.StateDir, logger)
	if err != nil {
		_ = kv.Close()
		_ = l.Release()
		return nil, err
	}
	return &state{lock: l, kv: kv, props: props, cache: persist.NewCache(kv, logger)}, nil
}

func (s *state) close() error {
	return errors.Join(s.kv.Close(), s.lock.Release())
}

func newSessionCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and repair the persisted session",
	}
	cmd.AddCommand(newSessionListCmd(cfgPath))
	cmd.AddCommand(newSessionScrubCmd(cfgPath))
	return cmd
}

func newSessionListCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List persisted open documents and recent files",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := appconfig.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger := pslog.Ctx(cmd.Context())
			st, err := openState(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, st.close()) }()

			saved, _, err := st.props.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range saved.OpenFiles {
				marker := " "
				if saved.ActiveTab != nil && *saved.ActiveTab == id {
					marker = "*"
				}
				snapshot, err := st.cache.Get(id)
				if err != nil {
					_, _ = fmt.Fprintf(out, "%s %s\t(missing: %v)\n", marker, id, err)
					continue
				}
				dirty := ""
				if snapshot.Dirty {
					dirty = " [modified]"
				}
				path := snapshot.FilePath
				if path == "" {
					path = "-"
				}
				_, _ = fmt.Fprintf(out, "%s %s\t%s%s\t%s\n", marker, id, snapshot.Label, dirty, path)
			}
			if len(saved.RecentFiles) > 0 {
				_, _ = fmt.Fprintln(out, "recent:")
				for _, path := range saved.RecentFiles {
					_, _ = fmt.Fprintf(out, "  %s\n", path)
				}
			}
			return nil
		},
	}
}

func newSessionScrubCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scrub",
		Short: "Remove orphaned snapshots and open entries without one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := appconfig.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger := pslog.Ctx(cmd.Context())
			st, err := openState(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, st.close()) }()

			saved, _, err := st.props.Load()
			if err != nil {
				return err
			}
			kept := make([]schema.DocumentID, 0, len(saved.OpenFiles))
			dropped := 0
			for _, id := range saved.OpenFiles {
				if _, err := st.cache.Get(id); err != nil {
					logger.Warn("session entry dropped", "doc", id, "err", err)
					dropped++
					continue
				}
				kept = append(kept, id)
			}
			if saved.ActiveTab != nil && !slices.Contains(kept, *saved.ActiveTab) {
				saved.ActiveTab = nil
			}
			saved.OpenFiles = kept
			removed, err := st.cache.Sweep(kept)
			if err != nil {
				return err
			}
			if err := st.props.Save(saved); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "open entries dropped: %d\nsnapshots removed: %d\n", dropped, removed)
			return err
		},
	}
}
