package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(fundCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(operationsCmd)
}

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "native balance of a wallet, classical or contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := call(getClient().R(), http.MethodGet, "/wallets/"+args[0]+"/balance")
		if err != nil {
			return err
		}

		return printJson(cmd, out)
	},
}

var fundCmd = &cobra.Command{
	Use:   "fund <contract-address>",
	Short: "seed a wallet from the demo faucet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := call(getClient().R(), http.MethodPost, "/wallets/"+args[0]+"/fund")
		if err != nil {
			return err
		}

		return printJson(cmd, out)
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect <signer-id>",
	Short: "recover the contract address registered for a signer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := call(getClient().R(), http.MethodGet, "/signers/"+args[0])
		if err != nil {
			return err
		}

		return printJson(cmd, out)
	},
}

var operationsCmd = &cobra.Command{
	Use:   "operations <account>",
	Short: "recent operations of a classical account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetString("limit")
		if err != nil {
			return err
		}

		req := getClient().R().SetQueryParam("limit", limit)
		out, err := call(req, http.MethodGet, "/accounts/"+args[0]+"/operations")
		if err != nil {
			return err
		}

		return printJson(cmd, out)
	},
}

func init() {
	operationsCmd.Flags().String("limit", "15", "max operations to list")
}
