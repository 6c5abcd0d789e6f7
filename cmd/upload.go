package cmd

import (
	"fmt"
	"strings"

	"github.com/spigell/cvscan/internal/document"
	"github.com/spigell/cvscan/internal/flow"
	cvlog "github.com/spigell/cvscan/internal/logger"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var modeLabels = map[flow.Mode]string{
	flow.ModeStorage: "Object storage (Supabase)",
	flow.ModeBackend: "Backend api",
}

var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Upload a CV and score it against the configured job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		upload(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringP("mode", "m", "", "where to store the CV: storage or backend")
	uploadCmd.Flags().String("job-id", "", "job identifier (overrides match.job-id)")
	uploadCmd.Flags().BoolP("interactive", "i", false, "choose the storage mode interactively")

	viper.BindPFlag("upload.mode", uploadCmd.Flags().Lookup("mode"))
}

func upload(cmd *cobra.Command, path string) {
	logger, config := setup()

	output := viper.GetString("output")
	if err := validateOutput(output); err != nil {
		logger.Fatal("checking flags", zap.Error(err))
	}

	id, _ := cmd.Flags().GetString("job-id")
	interactive, _ := cmd.Flags().GetBool("interactive")

	mode, err := flow.ParseMode(config.Upload.Mode)
	if err != nil {
		logger.Fatal("parsing the storage mode", zap.Error(err))
	}

	if interactive {
		mode, err = chooseMode(mode)
		if err != nil {
			logger.Fatal("choosing the storage mode", zap.Error(err))
		}
	}

	doc, err := document.Load(path)
	if err != nil {
		logger.Fatal("loading the CV", zap.Error(err))
	}

	apiClient, err := newAPIClient(config, logger)
	if err != nil {
		logger.Fatal("creating an api client", zap.Error(err))
	}

	uploaders := map[flow.Mode]flow.Uploader{
		flow.ModeBackend: flow.NewBackendUploader(apiClient),
	}

	if mode == flow.ModeStorage {
		store, err := newStorageClient(config, logger)
		if err != nil {
			logger.Fatal("creating a storage client", zap.Error(err))
		}
		uploaders[flow.ModeStorage] = flow.NewStorageUploader(store)
	}

	sp := startSpinner(cmd.ErrOrStderr(), spinnerEnabled(output), "Preparing...")

	f, err := flow.New(flow.Config{
		JobID:     jobID(id, config),
		Uploaders: uploaders,
		Matcher:   apiClient,
		Logger:    logger,
		OnTransition: func(s flow.State) {
			sp.Describe(stateDescription(s))
		},
	})
	if err != nil {
		sp.Stop()
		logger.Fatal("creating the upload flow", zap.Error(err))
	}

	if err := f.Select(mode, doc); err != nil {
		sp.Stop()
		logger.Fatal("selecting the CV", zap.Error(err))
	}

	logger.Debug("submitting the CV", append(cvlog.StringFields(
		cvlog.StringField{Key: "document", Value: doc.Name},
		cvlog.StringField{Key: "content_type", Value: doc.ContentType},
		cvlog.StringField{Key: cvlog.FieldBackend, Value: string(mode)},
	), zap.Int("size", doc.Size()))...)

	view, err := f.Submit(cmd.Context())
	sp.Stop()

	if view != nil {
		if perr := printView(cmd.OutOrStdout(), output, view); perr != nil {
			logger.Error("printing a result", zap.Error(perr))
		}
	}

	if err != nil {
		logger.Fatal("upload and match failed", zap.Error(err))
	}
}

func stateDescription(s flow.State) string {
	switch s {
	case flow.StateUploading:
		return "Uploading..."
	case flow.StateMatching:
		return "Matching..."
	case flow.StateDone:
		return "Done"
	case flow.StateError:
		return "Failed"
	default:
		return strings.ToUpper(string(s[:1])) + string(s[1:])
	}
}

func chooseMode(current flow.Mode) (flow.Mode, error) {
	modes := flow.Modes()

	items := make([]string, 0, len(modes))
	cursor := 0
	for i, m := range modes {
		items = append(items, modeLabels[m])
		if m == current {
			cursor = i
		}
	}

	prompt := promptui.Select{
		Label:     "Where should the CV be stored?",
		Items:     items,
		CursorPos: cursor,
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	return modes[idx], nil
}
