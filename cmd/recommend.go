package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/logger"
	"github.com/spigell/job-recommender/internal/matching"
	"github.com/spigell/job-recommender/internal/profile"
	"github.com/spigell/job-recommender/internal/recommend"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var errExit = errors.New("exit requested")

type flow func(ctx context.Context, svc *recommend.Service) (*recommend.Outcome, error)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Search job boards and rank the postings against a profile",
}

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Recommend jobs for a structured profile",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		req := recommend.FormRequest{
			JobTitle:   flagString(cmd, "title"),
			Experience: parseExperience(flagString(cmd, "experience")),
			Keywords:   flagString(cmd, "keywords"),
			Location:   flagString(cmd, "location"),
		}
		req.Skills, _ = cmd.Flags().GetStringSlice("skills")

		runRecommend(cmd, func(ctx context.Context, svc *recommend.Service) (*recommend.Outcome, error) {
			return svc.Form(ctx, req)
		})
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat <message...>",
	Short: "Recommend jobs for a free-text request",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		message := strings.Join(args, " ")
		runRecommend(cmd, func(ctx context.Context, svc *recommend.Service) (*recommend.Outcome, error) {
			return svc.Chat(ctx, message)
		})
	},
}

var cvCmd = &cobra.Command{
	Use:   "cv <file.pdf|file.docx>",
	Short: "Recommend jobs for a résumé",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]
		runRecommend(cmd, func(ctx context.Context, svc *recommend.Service) (*recommend.Outcome, error) {
			reader, err := profile.NewReader(ctx)
			if err != nil {
				return nil, err
			}
			text, err := reader.ReadFile(ctx, path)
			if err != nil {
				return nil, fmt.Errorf("reading resume: %w", err)
			}
			return svc.CV(ctx, text)
		})
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.AddCommand(formCmd, chatCmd, cvCmd)

	recommendCmd.PersistentFlags().Int("max-jobs", 0, "maximum number of jobs to retrieve (default from search.max-jobs)")
	recommendCmd.PersistentFlags().BoolP("yes", "y", false, "print the results without the interactive menu")
	recommendCmd.PersistentFlags().StringP("output", "o", outputTable, "output format: table or json")
	recommendCmd.PersistentFlags().StringP("exclude-file", "e", "", "file with jobs to exclude. Default is unset.")

	viper.BindPFlag("filters.exclude-file", recommendCmd.PersistentFlags().Lookup("exclude-file"))

	formCmd.Flags().String("title", "", "desired job title")
	formCmd.Flags().StringSlice("skills", nil, "comma separated skills")
	formCmd.Flags().String("experience", "", "years of experience, a number or text such as \"5 years\"")
	formCmd.Flags().String("keywords", "", "additional keywords")
	formCmd.Flags().String("location", "", "preferred location")
}

// runRecommend executes a recommendation flow and presents the outcome.
func runRecommend(cmd *cobra.Command, run flow) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	output := flagString(cmd, "output")
	if output != outputTable && output != outputJSON {
		logger.Fatal("invalid output format", zap.String("output", output))
	}

	logger.Info("starting the job-recommender", zap.String("version", resolveVersion()))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	maxJobs, _ := cmd.Flags().GetInt("max-jobs")

	sess, err := newSession(ctx, config, maxJobs, logger)
	if err != nil {
		logger.Fatal("preparing the recommender", zap.Error(err))
	}
	defer sess.Close()

	outcome, err := run(ctx, sess.service)
	if err != nil {
		logger.Fatal("recommendation failed", zap.Error(err))
	}

	logger.Info("ranked jobs",
		zap.Int("count", outcome.Jobs.Len()),
		zap.String("search_id", outcome.SearchID),
	)

	autoApprove, _ := cmd.Flags().GetBool("yes")
	if autoApprove || output == outputJSON || outcome.Jobs.Len() == 0 {
		if err := writeOutcome(os.Stdout, outcome, output); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, logger, config, sess.service, outcome); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

type outcomeOutput struct {
	*recommend.Outcome
	Jobs []matching.ScoredJob `json:"jobs"`
}

func writeOutcome(w io.Writer, outcome *recommend.Outcome, output string) error {
	if output == outputJSON {
		return encodeJSON(w, outcomeOutput{Outcome: outcome, Jobs: outcome.Jobs.Items})
	}

	if outcome.Resume != nil {
		fmt.Fprintf(w, "Resume: %s, skills: %s\n", outcome.Resume.JobTitle, strings.Join(outcome.Resume.Skills, ", "))
	}
	if outcome.SearchID != "" {
		fmt.Fprintf(w, "Search: %s\n", outcome.SearchID)
	}
	return outcome.Jobs.WriteTable(w)
}

// parseExperience accepts a year count or free text.
func parseExperience(s string) matching.Experience {
	s = strings.TrimSpace(s)
	if s == "" {
		return matching.Experience{}
	}
	if years, err := strconv.ParseFloat(s, 64); err == nil {
		return matching.ExperienceYears(years)
	}
	return matching.ExperienceText(s)
}

func flagString(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return strings.TrimSpace(value)
}
