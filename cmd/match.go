package cmd

import (
	"github.com/spigell/cvscan/internal/api"
	"github.com/spigell/cvscan/internal/flow"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score an already uploaded CV against a job",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("cv-filename", "", "reference of the uploaded CV")
	matchCmd.Flags().String("job-id", "", "job identifier (overrides match.job-id)")
	matchCmd.Flags().Bool("legacy", false, "use the legacy match endpoint and print its raw response")
	matchCmd.MarkFlagRequired("cv-filename")
}

func match(cmd *cobra.Command) {
	logger, config := setup()

	cvFilename, _ := cmd.Flags().GetString("cv-filename")
	id, _ := cmd.Flags().GetString("job-id")
	legacy, _ := cmd.Flags().GetBool("legacy")
	output := viper.GetString("output")

	req := api.MatchRequest{CVFilename: cvFilename, JobID: jobID(id, config)}
	if req.JobID == "" {
		logger.Fatal("matching", zap.Error(flow.ErrNoJobID))
	}

	client, err := newAPIClient(config, logger)
	if err != nil {
		logger.Fatal("creating an api client", zap.Error(err))
	}

	if legacy {
		resp, err := client.Match(cmd.Context(), req)
		if err != nil {
			logger.Fatal("matching", zap.Error(err))
		}

		if err := printResult(cmd.OutOrStdout(), output, resp); err != nil {
			logger.Fatal("printing a result", zap.Error(err))
		}
		return
	}

	sp := startSpinner(cmd.ErrOrStderr(), spinnerEnabled(output), "Matching...")
	result, err := client.MatchStat(cmd.Context(), req)
	sp.Stop()
	if err != nil {
		logger.Fatal("matching", zap.Error(err))
	}

	view := flow.NewMatchView(result)
	if output != outputText {
		if err := printResult(cmd.OutOrStdout(), output, view); err != nil {
			logger.Fatal("printing a result", zap.Error(err))
		}
		return
	}

	renderMatch(cmd.OutOrStdout(), view)
}

// spinnerEnabled keeps the terminal quiet for machine readable output and
// debug logs.
func spinnerEnabled(output string) bool {
	return output == outputText && !viper.GetBool("debug") && !viper.GetBool("json")
}
