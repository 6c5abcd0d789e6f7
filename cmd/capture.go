package cmd

import (
	"errors"
	"fmt"

	"github.com/spigell/cvscan/internal/capture"
	"github.com/spigell/cvscan/internal/document"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const speechUnavailableReason = "set ai.gemini.api-key or GEMINI_API_KEY to enable speech-to-text"

const (
	engineAPI    = "api"
	engineGemini = "gemini"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Recognize text from an image and speech from a recording, then send both as a prompt",
	Run: func(cmd *cobra.Command, _ []string) {
		runCapture(cmd)
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().String("image", "", "image to run text recognition on")
	captureCmd.Flags().String("audio", "", "audio recording to transcribe")
	captureCmd.Flags().String("ocr-text", "", "text for the recognized-text buffer (replaced by --image)")
	captureCmd.Flags().String("speech-text", "", "text for the speech buffer (replaced by --audio)")
	captureCmd.Flags().Bool("dry-run", false, "print the combined prompt instead of sending it")
	captureCmd.Flags().String("engine", engineAPI, "where the prompt is sent: api or gemini")
}

func runCapture(cmd *cobra.Command) {
	logger, config := setup()
	ctx := cmd.Context()

	imagePath, _ := cmd.Flags().GetString("image")
	audioPath, _ := cmd.Flags().GetString("audio")
	ocrText, _ := cmd.Flags().GetString("ocr-text")
	speechText, _ := cmd.Flags().GetString("speech-text")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	engine, _ := cmd.Flags().GetString("engine")
	output := viper.GetString("output")

	generator, err := newGenerator(ctx, config, logger)
	if err != nil {
		logger.Fatal("creating a gemini client", zap.Error(err))
	}

	// Interfaces stay nil when no engine is configured.
	var (
		ocr         capture.ImageRecognizer
		transcriber capture.Transcriber
	)
	if generator != nil {
		ocr = generator
		transcriber = generator
	}

	speech := capture.ResolveSpeech(transcriber, speechUnavailableReason)

	var session *capture.Session
	switch {
	case dryRun:
		session = capture.NewSession(ocr, speech, nil, logger)
	case engine == engineGemini:
		if generator == nil {
			logger.Fatal("sending to gemini", zap.String("hint", "set ai.gemini.api-key or GEMINI_API_KEY"))
		}
		session = capture.NewSession(ocr, speech, generator, logger)
	case engine == engineAPI:
		apiClient, err := newAPIClient(config, logger)
		if err != nil {
			logger.Fatal("creating an api client", zap.Error(err))
		}
		session = capture.NewSession(ocr, speech, apiClient, logger)
	default:
		logger.Fatal("unknown prompt engine", zap.String("engine", engine))
	}

	session.SetOCRText(ocrText)
	session.SetSpeechText(speechText)

	if imagePath != "" {
		image, err := document.Load(imagePath)
		if err != nil {
			logger.Fatal("loading the image", zap.Error(err))
		}

		sp := startSpinner(cmd.ErrOrStderr(), spinnerEnabled(output), "Recognizing text...")
		text, err := session.OCR(ctx, image)
		sp.Stop()
		if errors.Is(err, capture.ErrOCRUnavailable) {
			logger.Fatal("recognizing text", zap.Error(err),
				zap.String("hint", "set ai.gemini.api-key or GEMINI_API_KEY"))
		}
		if err != nil {
			logger.Fatal("recognizing text", zap.Error(err))
		}
		logger.Info("text recognized", zap.Int("length", len(text)))
	}

	if audioPath != "" {
		if !session.SpeechSupported() {
			warn(cmd.ErrOrStderr(), "speech recognition is not available: %s", speechUnavailableReason)
		} else {
			audio, err := document.Load(audioPath)
			if err != nil {
				logger.Fatal("loading the recording", zap.Error(err))
			}

			sp := startSpinner(cmd.ErrOrStderr(), spinnerEnabled(output), "Listening...")
			text, err := session.Listen(ctx, audio)
			sp.Stop()
			if errors.Is(err, capture.ErrSpeechUnsupported) {
				warn(cmd.ErrOrStderr(), "%v", err)
			} else if err != nil {
				logger.Fatal("transcribing speech", zap.Error(err))
			} else {
				logger.Info("speech transcribed", zap.Int("length", len(text)))
			}
		}
	}

	if dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), session.Combine())
		return
	}

	sp := startSpinner(cmd.ErrOrStderr(), spinnerEnabled(output), "Sending prompt...")
	resp, sent, err := session.Send(ctx)
	sp.Stop()
	if err != nil {
		logger.Fatal("sending the prompt", zap.Error(err))
	}

	if !sent {
		logger.Info("nothing to send, both capture buffers are empty")
		return
	}

	if err := printResult(cmd.OutOrStdout(), output, resp); err != nil {
		logger.Fatal("printing a result", zap.Error(err))
	}
}
