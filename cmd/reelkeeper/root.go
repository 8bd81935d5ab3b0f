package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/reelkeeper/auth"
	"github.com/hazyhaar/reelkeeper/config"
	"github.com/hazyhaar/reelkeeper/dbopen"
	"github.com/hazyhaar/reelkeeper/download"
	"github.com/hazyhaar/reelkeeper/prefstore"
	"github.com/hazyhaar/reelkeeper/resolver"
	"github.com/hazyhaar/reelkeeper/trace"
)

// app carries what every command needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
	level  slog.Level
	out    io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "reelkeeper",
		Short:         "Persistent reel volume and one-click reel downloads",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: user config dir/reelkeeper/config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		newWatchCmd(a),
		newDownloadCmd(a),
		newServeCmd(a),
		newVolumeCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newShortcodeCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	a.level = parseLevel(a.logLevel)
	a.logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: a.level}))
	trace.SetLogger(a.logger)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger.Debug("cli: config loaded", "path", cfg.Path, "download_dir", cfg.DownloadDir, "db", cfg.DBPath)
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// credentials prefers $REELKEEPER_SESSIONID over the keyring.
func (a *app) credentials() (auth.Credentials, error) {
	if a.cfg.SessionID != "" {
		return auth.Credentials{SessionID: a.cfg.SessionID}, nil
	}
	return auth.Load()
}

// keyringClient returns an HTTP client whose jar holds the stored session.
// Without one, requests go out anonymous.
func (a *app) keyringClient() (*http.Client, error) {
	jar := auth.NewJar()
	creds, err := a.credentials()
	switch {
	case err == nil:
		auth.Seed(jar, auth.FromCredentials(creds))
	case errors.Is(err, auth.ErrNoCredentials):
		a.logger.Warn("cli: no stored session, requests are anonymous")
	default:
		return nil, err
	}
	return &http.Client{Jar: jar}, nil
}

// openStore opens the preference database. At debug level every query is
// logged through the tracing driver.
func (a *app) openStore() (*prefstore.SQLite, error) {
	var opts []dbopen.Option
	if a.level <= slog.LevelDebug {
		opts = append(opts, dbopen.WithDriver(trace.DriverName))
	}
	return prefstore.Open(a.cfg.DBPath, a.logger, opts...)
}

func (a *app) newResolver(opts ...resolver.Option) *resolver.Resolver {
	return resolver.New(a.cfg.Resolver, append([]resolver.Option{resolver.WithLogger(a.logger)}, opts...)...)
}

func (a *app) saver() *download.Saver {
	return download.New(a.cfg.DownloadDir,
		download.WithNaming(download.ParseNaming(a.cfg.Naming)),
		download.WithLogger(a.logger))
}

// success prints through the command's writer. pterm's printers capture
// os.Stdout at init and ignore SetDefaultOutput.
func (a *app) success(format string, args ...any) {
	pterm.Success.WithWriter(a.out).Printfln(format, args...)
}

func (a *app) info(format string, args ...any) {
	pterm.Info.WithWriter(a.out).Printfln(format, args...)
}

func (a *app) printTable(rows pterm.TableData) error {
	return pterm.DefaultTable.WithHasHeader(true).WithWriter(a.out).WithData(rows).Render()
}
