package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/logger"
	"github.com/spigell/job-recommender/internal/matching"
	"github.com/spigell/job-recommender/internal/results"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank a supplied batch of jobs against a profile without searching",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().String("profile", "", "JSON file with the user profile")
	rankCmd.Flags().String("jobs", "", "JSON file with an array of job postings")
	rankCmd.Flags().StringP("output", "o", outputJSON, "output format: table or json")

	rankCmd.MarkFlagRequired("profile")
	rankCmd.MarkFlagRequired("jobs")
}

func rank(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	var profile matching.UserProfile
	if err := readJSONFile(flagString(cmd, "profile"), &profile); err != nil {
		logger.Fatal("reading profile", zap.Error(err))
	}

	var postings []jobs.Posting
	if err := readJSONFile(flagString(cmd, "jobs"), &postings); err != nil {
		logger.Fatal("reading jobs", zap.Error(err))
	}

	ranked := results.New(matching.Rank(profile, postings))
	logger.Info("ranked jobs", zap.Int("count", ranked.Len()))

	if flagString(cmd, "output") == outputTable {
		err = ranked.WriteTable(os.Stdout)
	} else {
		err = encodeJSON(os.Stdout, ranked.Items)
	}
	if err != nil {
		logger.Fatal("writing results", zap.Error(err))
	}
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
