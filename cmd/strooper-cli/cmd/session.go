package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(createSessionCmd)
	sessionCmd.AddCommand(getSessionCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "inspect and create handoff sessions",
}

var createSessionCmd = &cobra.Command{
	Use:   "create <telegram-user-id>",
	Short: "create a provisioning intent session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := getClient().R().SetBody(map[string]string{"telegram_user_id": args[0]})
		out, err := call(req, http.MethodPost, "/sessions")
		if err != nil {
			return err
		}

		return printJson(cmd, out)
	},
}

var getSessionCmd = &cobra.Command{
	Use:   "get <session-id>",
	Short: "fetch a session and its owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := call(getClient().R(), http.MethodGet, "/sessions/"+args[0])
		if err != nil {
			return err
		}

		return printJson(cmd, out)
	},
}
