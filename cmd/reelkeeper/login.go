package main

import (
	"github.com/spf13/cobra"

	"github.com/hazyhaar/reelkeeper/auth"
)

func newLoginCmd(a *app) *cobra.Command {
	var creds auth.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the Instagram session cookie in the OS keyring",
		Long: "Store the Instagram session cookie in the OS keyring. Copy the " +
			"sessionid cookie from a logged-in browser. download and serve use it; " +
			"watch uses the browser's own cookies.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := auth.Save(creds); err != nil {
				return err
			}
			a.success("Session stored in the keyring")
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.SessionID, "sessionid", "", "value of the sessionid cookie")
	cmd.Flags().StringVar(&creds.CSRFToken, "csrftoken", "", "value of the csrftoken cookie")
	_ = cmd.MarkFlagRequired("sessionid")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session from the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := auth.Clear(); err != nil {
				return err
			}
			a.success("Session removed")
			return nil
		},
	}
}
