package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/logger"
	"github.com/spigell/job-recommender/internal/results"
	"github.com/spigell/job-recommender/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past searches",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent searches",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		withHistory(cmd, func(store *storage.Store, config *Config, output string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			searches, err := store.ListSearches(cmd.Context(), config.UserID, limit)
			if err != nil {
				return err
			}
			if output == outputJSON {
				return encodeJSON(os.Stdout, searches)
			}
			return writeSearches(os.Stdout, searches)
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <search-id>",
	Short: "Show the ranked jobs of a search",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withHistory(cmd, func(store *storage.Store, _ *Config, output string) error {
			ranked, err := store.Results(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == outputJSON {
				return encodeJSON(os.Stdout, ranked)
			}
			return results.New(ranked).WriteTable(os.Stdout)
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd)

	historyCmd.PersistentFlags().StringP("output", "o", outputTable, "output format: table or json")
	historyListCmd.Flags().Int("limit", 20, "number of searches to list")
}

func withHistory(cmd *cobra.Command, run func(store *storage.Store, config *Config, output string) error) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if !config.Storage.Enabled {
		logger.Fatal("search history is disabled", zap.String("hint", "set storage.enabled to true"))
	}

	store, err := storage.Open(config.Storage.Path)
	if err != nil {
		logger.Fatal("opening search history", zap.Error(err))
	}
	defer store.Close()

	if err := run(store, config, flagString(cmd, "output")); err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrSavedJobNotFound) {
			logger.Error("not found", zap.Error(err))
			return
		}
		logger.Fatal("reading search history", zap.Error(err))
	}
}

func writeSearches(w io.Writer, searches []storage.Search) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tRESULTS\tCREATED\tKEYWORDS")
	for _, s := range searches {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.Kind, s.Results, s.CreatedAt.Local().Format(time.DateTime), s.Keywords)
	}
	return tw.Flush()
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
