package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/reelkeeper/resolver"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the download message endpoint on loopback",
		Long: "Serve POST /v1/messages on a loopback address so watch sessions " +
			"started with --resolver-url share one resolver and one download directory.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen == "" {
				listen = a.cfg.Listen
			}
			return a.runServe(cmd.Context(), listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, 127.0.0.1:8765)")
	return cmd
}

func (a *app) runServe(ctx context.Context, listen string) error {
	if err := checkLoopback(listen); err != nil {
		return err
	}
	client, err := a.keyringClient()
	if err != nil {
		return err
	}
	r := a.newResolver(
		resolver.WithHTTPClient(client),
		resolver.WithDispatcher(a.saver()),
	)

	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("serve: listen: %w", err)
	}
	srv := &http.Server{
		Handler:           r.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	a.logger.Info("serve: listening", "addr", ln.Addr().String(), "download_dir", a.cfg.DownloadDir)
	a.info("Listening on http://%s", ln.Addr())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("serve: shutdown: %w", err)
	}
	a.logger.Info("serve: stopped")
	return nil
}

// checkLoopback refuses addresses reachable from other machines: the
// endpoint downloads with the user's session.
func checkLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("serve: bad listen address %q: %w", addr, err)
	}
	if host == "localhost" {
		return nil
	}
	ip, err := netip.ParseAddr(host)
	if err != nil || !ip.IsLoopback() {
		return fmt.Errorf("serve: listen address %q is not loopback", addr)
	}
	return nil
}
