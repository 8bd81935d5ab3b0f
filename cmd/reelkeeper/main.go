// Command reelkeeper keeps one volume across Instagram reels and adds a
// download button next to them.
//
// Usage:
//
//	reelkeeper watch                         # open the browser with the overlay
//	reelkeeper download <reel-url>           # resolve and save one reel
//	reelkeeper serve                         # loopback resolver for remote watch sessions
//	reelkeeper volume 40 | mute | unmute     # show or set the stored volume
//	reelkeeper login --sessionid ...         # store the session cookie in the keyring
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		pterm.Error.WithWriter(os.Stderr).Println(err)
		os.Exit(1)
	}
}
