package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/developia-II/longform-translator-backend/internal/config"
	"github.com/developia-II/longform-translator-backend/internal/models"
	"github.com/developia-II/longform-translator-backend/internal/pipeline"
)

var (
	fromLang    string
	toLang      string
	profileName string
)

var translateCmd = &cobra.Command{
	Use:   "translate [file]",
	Short: "Translate a file (or stdin with -) and print the result",
	Example: `  server translate --from tr --to kk --profile religious-tr-kk book.txt
  cat notes.txt | server translate --from en --to de -`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().StringVar(&fromLang, "from", "", "Source language code")
	translateCmd.Flags().StringVar(&toLang, "to", "", "Target language code")
	translateCmd.Flags().StringVar(&profileName, "profile", "", "Translation profile (default from TRANSLATION_PROFILE)")
	translateCmd.MarkFlagRequired("from")
	translateCmd.MarkFlagRequired("to")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	text, err := readInput(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipelines, err := buildPipelines(ctx, cfg)
	if err != nil {
		return err
	}

	name := profileName
	if name == "" {
		name = cfg.TranslationProfile
	}
	p, ok := pipelines[name]
	if !ok {
		return fmt.Errorf("unknown translation profile %q", name)
	}

	req := pipeline.Request{
		ID:             uuid.NewString(),
		OriginalText:   text,
		SourceLanguage: fromLang,
		TargetLanguage: toLang,
	}

	stderr := cmd.ErrOrStderr()
	out, err := p.Run(ctx, req, func(ev models.ProgressEvent) {
		fmt.Fprintf(stderr, "[%d/%d] %s\n", ev.Current, ev.Total, ev.Status)
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func readInput(stdin io.Reader, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("input is empty")
	}
	return string(data), nil
}
