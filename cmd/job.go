package cmd

import (
	"os"
	"strings"

	"github.com/spigell/cvscan/internal/api"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Register a job description with the cvscan api",
	Run: func(cmd *cobra.Command, _ []string) {
		job(cmd)
	},
}

func init() {
	rootCmd.AddCommand(jobCmd)

	jobCmd.Flags().String("job-id", "", "job identifier (the api assigns one when empty)")
	jobCmd.Flags().StringP("content", "c", "", "job description text")
	jobCmd.Flags().StringP("content-file", "f", "", "file with the job description text")
	jobCmd.MarkFlagsMutuallyExclusive("content", "content-file")
}

func job(cmd *cobra.Command) {
	logger, config := setup()

	content, _ := cmd.Flags().GetString("content")
	contentFile, _ := cmd.Flags().GetString("content-file")
	id, _ := cmd.Flags().GetString("job-id")

	if contentFile != "" {
		data, err := os.ReadFile(contentFile)
		if err != nil {
			logger.Fatal("reading the job description", zap.String("file", contentFile), zap.Error(err))
		}
		content = string(data)
	}

	if strings.TrimSpace(content) == "" {
		logger.Fatal("job description is empty, use --content or --content-file")
	}

	client, err := newAPIClient(config, logger)
	if err != nil {
		logger.Fatal("creating an api client", zap.Error(err))
	}

	resp, err := client.CreateJob(cmd.Context(), api.JobRequest{
		JobID:   strings.TrimSpace(id),
		Content: content,
	})
	if err != nil {
		logger.Fatal("creating a job", zap.Error(err))
	}

	if err := printResult(cmd.OutOrStdout(), viper.GetString("output"), resp); err != nil {
		logger.Fatal("printing a result", zap.Error(err))
	}
}
