package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/reelkeeper/download"
	"github.com/hazyhaar/reelkeeper/idgen"
	"github.com/hazyhaar/reelkeeper/kit"
	"github.com/hazyhaar/reelkeeper/resolver"
)

var newCLIRequestID = idgen.Prefixed("cli_", idgen.Default)

type downloadResult struct {
	Shortcode string `json:"shortcode"`
	PK        string `json:"pk"`
	Source    string `json:"source"`
	URL       string `json:"url"`
	Path      string `json:"path,omitempty"`
}

func newDownloadCmd(a *app) *cobra.Command {
	var (
		output  string
		urlOnly bool
	)
	cmd := &cobra.Command{
		Use:   "download <reel-url>",
		Short: "Resolve a reel's video and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDownload(cmd.Context(), cmd.OutOrStdout(), args[0], urlOnly, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format (json)")
	cmd.Flags().BoolVar(&urlOnly, "url-only", false, "print the media URL without saving the file")
	return cmd
}

func (a *app) runDownload(ctx context.Context, out io.Writer, pageURL string, urlOnly bool, output string) error {
	client, err := a.keyringClient()
	if err != nil {
		return err
	}
	r := a.newResolver(resolver.WithHTTPClient(client))
	ctx = kit.WithTransport(kit.WithRequestID(ctx, newCLIRequestID()), "cli")

	m, err := r.Resolve(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", pageURL, err)
	}
	res := downloadResult{
		Shortcode: m.Shortcode,
		PK:        m.PK.String(),
		Source:    string(m.Source),
		URL:       m.URL,
	}

	if !urlOnly {
		path, err := a.saver().Dispatch(ctx, download.Job{URL: m.URL, Shortcode: m.Shortcode})
		if err != nil {
			return err
		}
		res.Path = path
	}

	if output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if res.Path != "" {
		a.success("Saved %s", res.Path)
	} else {
		a.success("Resolved %s", res.Shortcode)
	}
	return a.printTable(pterm.TableData{
		{"Property", "Value"},
		{"Shortcode", res.Shortcode},
		{"Media ID", res.PK},
		{"Source", res.Source},
		{"URL", res.URL},
	})
}
