package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the cvscan api is reachable",
	Run: func(cmd *cobra.Command, _ []string) {
		health(cmd)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func health(cmd *cobra.Command) {
	logger, config := setup()

	client, err := newAPIClient(config, logger)
	if err != nil {
		logger.Fatal("creating an api client", zap.Error(err))
	}

	resp, err := client.Health(cmd.Context())
	if err != nil {
		logger.Fatal("checking api health", zap.Error(err))
	}

	if err := printResult(cmd.OutOrStdout(), viper.GetString("output"), resp); err != nil {
		logger.Fatal("printing a result", zap.Error(err))
	}
}
