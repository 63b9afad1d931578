package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <word>",
		Short: "Check whether a word is accepted by the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result WordCheck

			query := url.Values{"word": {args[0]}}
			if err := client.Get(cmd.Context(), "/api/v1/check_word", query, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newPlayerIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player-id",
		Short: "Generate a fresh player ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerIDResult

			if err := client.Get(cmd.Context(), "/api/v1/players/id", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
