package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/reelkeeper/reel"
)

func newShortcodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shortcode <url>",
		Short: "Print a reel URL's shortcode and numeric media id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := reel.ExtractShortcode(args[0])
			if err != nil {
				return err
			}
			pk, err := reel.ShortcodeToPK(code)
			if err != nil {
				return err
			}
			return a.printTable(pterm.TableData{
				{"Shortcode", "Media ID"},
				{code, pk.String()},
			})
		},
	}
}
