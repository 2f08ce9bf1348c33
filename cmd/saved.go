package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/spigell/job-recommender/internal/storage"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved jobs",
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved jobs, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		withHistory(cmd, func(store *storage.Store, config *Config, output string) error {
			saved, err := store.SavedJobs(cmd.Context(), config.UserID)
			if err != nil {
				return err
			}
			if output == outputJSON {
				return encodeJSON(os.Stdout, saved)
			}
			return writeSavedJobs(os.Stdout, saved)
		})
	},
}

var savedRemoveCmd = &cobra.Command{
	Use:   "remove <saved-id>",
	Short: "Remove a saved job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withHistory(cmd, func(store *storage.Store, config *Config, _ string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parsing saved job id %q: %w", args[0], err)
			}
			if err := store.UnsaveJob(cmd.Context(), config.UserID, id); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "removed saved job %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(savedCmd)
	savedCmd.AddCommand(savedListCmd, savedRemoveCmd)

	savedCmd.PersistentFlags().StringP("output", "o", outputTable, "output format: table or json")
}

func writeSavedJobs(w io.Writer, saved []storage.SavedJob) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCORE\tTITLE\tCOMPANY\tSAVED\tNOTES")
	for _, s := range saved {
		fmt.Fprintf(tw, "%d\t%.1f\t%s\t%s\t%s\t%s\n",
			s.ID, s.Job.MatchScore, s.Job.Title, s.Job.Company, s.CreatedAt.Local().Format(time.DateTime), s.Notes)
	}
	return tw.Flush()
}
