package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/reelkeeper/reel"
)

func newVolumeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "volume [0-100|mute|unmute]",
		Short: "Show or set the stored reel volume",
		Long: "Show or set the stored reel volume. A running watch session " +
			"picks up the change within a second.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			p, err := store.Load(ctx)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				p, err = applyVolumeArg(p, args[0])
				if err != nil {
					return err
				}
				if err := store.Save(ctx, p); err != nil {
					return err
				}
				a.success("Volume updated")
			}

			muted := "no"
			if p.Muted {
				muted = "yes"
			}
			return a.printTable(pterm.TableData{
				{"Volume", "Muted"},
				{strconv.Itoa(int(p.Volume*100+0.5)) + "%", muted},
			})
		},
	}
}

// applyVolumeArg interprets the volume command's argument. A numeric value
// behaves like the overlay slider: 0 mutes, anything else unmutes.
func applyVolumeArg(p reel.Preferences, arg string) (reel.Preferences, error) {
	switch arg {
	case "mute":
		p.Muted = true
		return p, nil
	case "unmute":
		p.Muted = false
		return p, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 || n > 100 {
		return p, fmt.Errorf("volume: want 0-100, mute or unmute, got %q", arg)
	}
	if n == 0 {
		// Keep the last audible volume so unmute restores it.
		p.Muted = true
		return p, nil
	}
	return reel.FromSlider(n), nil
}
