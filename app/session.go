package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/classgroups/classgroups/internal/daemon"
	"github.com/classgroups/classgroups/internal/db/controller/unit"
	"github.com/classgroups/classgroups/internal/web/session"
)

var sessionAs string

func init() { //nolint: gochecknoinits
	sessionCmd.Flags().StringVar(&sessionAs, "as", "admin", "username the session belongs to")

	rootCmd.AddCommand(sessionCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Issue an API session for a user and print its cookie value",
	Long: `Issue an API session for a user and print its cookie value.
Sessions are normally written by the sign-in service sharing the session store;
this command is meant for scripting and development against mysql or postgres.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		gdb, err := daemon.Open(&cfg)
		if err != nil {
			return err
		}

		user, err := unit.UserByUsername(gdb.WithContext(cmd.Context()), sessionAs)
		if err != nil {
			return err
		}

		daemon.InitSessions(&cfg)

		id, err := session.Issue(user, cfg.Webserver.Session.ExpiryTime)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", session.CookieName, id)

		return err
	},
}
