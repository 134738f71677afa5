package cmd

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <pdf file or directory>...",
	Short: "Upload a batch of PDF resumes",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		upload(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringP("batch", "b", "", "batch label for this upload session (required)")
	uploadCmd.MarkFlagRequired("batch")
}

func upload(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	application, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("starting the %s upload: %v", app, err)
	}
	defer application.Close()

	logger := application.logger
	batch, _ := cmd.Flags().GetString("batch")

	paths, err := collectPDFs(args)
	if err != nil {
		logger.Fatal("collecting pdf files", zap.Error(err))
	}
	if len(paths) == 0 {
		logger.Fatal("no pdf files found in the given paths")
	}

	logger.Info("uploading resumes", zap.String("batch", batch), zap.Int("files", len(paths)))

	uploaded := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable file", zap.String("file", path), zap.Error(err))
			continue
		}

		result, err := application.ingester.Ingest(ctx, batch, filepath.Base(path), data)
		if err != nil {
			logger.Warn("skipping file", zap.String("file", path), zap.Error(err))
			continue
		}

		uploaded++
		logger.Info("uploaded",
			zap.String("file", filepath.Base(path)),
			zap.String("candidate", result.CandidateName),
			zap.String("id", result.ID),
		)
	}

	logger.Info("upload finished",
		zap.String("batch", batch),
		zap.Int("uploaded", uploaded),
		zap.Int("skipped", len(paths)-uploaded),
	)
}

// collectPDFs expands the given files and directories into a flat list of
// pdf paths. Directories are scanned one level deep.
func collectPDFs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return paths, nil
}
