package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/reelkeeper/domwatch"
	"github.com/hazyhaar/reelkeeper/overlay"
	"github.com/hazyhaar/reelkeeper/reel"
	"github.com/hazyhaar/reelkeeper/resolver"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		startURL    string
		resolverURL string
		headless    bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Open Instagram reels with the volume overlay and download button",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if resolverURL != "" {
				a.cfg.ResolverURL = resolverURL
			}
			if cmd.Flags().Changed("headless") {
				a.cfg.Browser.Headless = headless
			}
			return a.runWatch(cmd.Context(), startURL)
		},
	}
	cmd.Flags().StringVar(&startURL, "url", "", "start URL (default "+domwatch.DefaultStartURL+")")
	cmd.Flags().StringVar(&resolverURL, "resolver-url", "", "send downloads to a running serve instance")
	cmd.Flags().BoolVar(&headless, "headless", false, "hide the browser window")
	return cmd
}

func (a *app) runWatch(ctx context.Context, startURL string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	w := domwatch.New(a.cfg.Browser, a.logger)
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Close()

	page, err := w.Open(ctx, startURL)
	if err != nil {
		return err
	}

	var msgr overlay.Messenger
	if a.cfg.ResolverURL != "" {
		msgr = resolver.NewRemote(a.cfg.ResolverURL)
		a.logger.Info("cli: downloads go to remote resolver", "url", a.cfg.ResolverURL)
	} else {
		msgr = resolver.Local{R: a.newResolver(
			resolver.WithCookieSource(page.Cookies),
			resolver.WithDispatcher(a.saver()),
		)}
	}

	reloads := make(chan reel.Preferences, 1)
	go func() {
		err := store.Watch(ctx, a.cfg.PrefsPoll, func(p reel.Preferences) {
			select {
			case reloads <- p:
			case <-ctx.Done():
			}
		})
		if err != nil {
			a.logger.Warn("cli: preference watch stopped", "error", err)
		}
	}()

	sessCfg := a.cfg.Overlay.Session()
	sessCfg.Logger = a.logger
	sess := overlay.NewSession(page, store, msgr, sessCfg)

	if err := sess.Run(ctx, page.Events(), reloads); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	a.logger.Info("cli: watch stopped", "dropped_events", page.Dropped())
	return nil
}
