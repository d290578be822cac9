package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat over the ingested statements",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if answerService == nil {
			return errors.New("answer service not configured")
		}
		return tui.Run(answerService)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
