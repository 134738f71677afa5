package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/dshevko/talentsift/internal/pipeline"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	PromptShortlistAll = "Shortlist all results"
	PromptShortlistTop = "Shortlist the top N results"
	PromptExit         = "Exit"
)

var searchCmd = &cobra.Command{
	Use:   "search <job description>",
	Short: "Rank stored resumes against a job description",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		search(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceP("batch", "b", nil, "restrict the search to these batch labels")
	searchCmd.Flags().IntP("top-k", "k", pipeline.DefaultTopK, "how many resumes to retrieve")
	searchCmd.Flags().BoolP("no-prompt", "n", false, "print the ranking and exit without the shortlist prompt")
}

func search(cmd *cobra.Command, query string) {
	ctx := context.Background()

	application, err := newApplication(ctx)
	if err != nil {
		log.Fatalf("starting the %s search: %v", app, err)
	}
	defer application.Close()

	logger := application.logger

	batches, _ := cmd.Flags().GetStringSlice("batch")
	topK, _ := cmd.Flags().GetInt("top-k")

	ranked, err := application.pipeline.Rank(ctx, query, batches, topK)
	if err != nil {
		if errors.Is(err, pipeline.ErrEmptyQuery) {
			logger.Fatal("query must not be empty")
		}
		logger.Fatal("search failed", zap.Error(err))
	}

	if len(ranked) == 0 {
		logger.Info("exiting", zap.String("reason", "no matching resumes found"))
		return
	}

	printRanking(ranked)

	if noPrompt, _ := cmd.Flags().GetBool("no-prompt"); noPrompt {
		return
	}

	prompt := promptui.Select{
		Label: "What next?",
		Items: []string{PromptShortlistAll, PromptShortlistTop, PromptExit},
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		switch action {
		case PromptShortlistAll:
			shortlist(ctx, application, logger, ranked)
			return
		case PromptShortlistTop:
			n := askTopN(logger, len(ranked))
			shortlist(ctx, application, logger, ranked[:n])
			return
		case PromptExit:
			logger.Info("exiting", zap.String("reason", "got exit from prompt"))
			return
		}
	}
}

func printRanking(ranked []pipeline.RankedCandidate) {
	for i, c := range ranked {
		fmt.Printf("%2d. [%3d/100] %s (batch: %s, file: %s)\n", i+1, c.Score, c.CandidateName, c.BatchName, c.FileName)
		if c.MatchReason != "" {
			fmt.Printf("    %s\n", c.MatchReason)
		}
		if c.Gaps != "" {
			fmt.Printf("    gaps: %s\n", c.Gaps)
		}
	}
}

func askTopN(logger *zap.Logger, max int) int {
	prompt := promptui.Prompt{
		Label: fmt.Sprintf("How many (1-%d)?", max),
		Validate: func(input string) error {
			n, err := strconv.Atoi(strings.TrimSpace(input))
			if err != nil || n < 1 || n > max {
				return fmt.Errorf("enter a number between 1 and %d", max)
			}
			return nil
		},
	}

	raw, err := prompt.Run()
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}

	n, _ := strconv.Atoi(strings.TrimSpace(raw))
	return n
}

func shortlist(ctx context.Context, application *application, logger *zap.Logger, ranked []pipeline.RankedCandidate) {
	rolePrompt := promptui.Prompt{
		Label: "Role name for the shortlist",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("role name must not be empty")
			}
			return nil
		},
	}

	role, err := rolePrompt.Run()
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}

	ids := make([]string, 0, len(ranked))
	for _, c := range ranked {
		ids = append(ids, c.ResumeID)
	}

	added, err := application.db.AddToShortlist(ctx, ids, strings.TrimSpace(role))
	if err != nil {
		logger.Fatal("adding to shortlist", zap.Error(err))
	}

	logger.Info("shortlisted candidates",
		zap.String("role", strings.TrimSpace(role)),
		zap.Int("added", added),
		zap.Int("already_present", len(ids)-added),
	)
}
