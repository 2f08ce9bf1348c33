package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/recommend"
	"github.com/spigell/job-recommender/internal/results"
	"github.com/spigell/job-recommender/internal/storage"
)

const (
	PromptShowResults         = "Show results"
	PromptJobDetails          = "Show job details"
	PromptReportByPlatform    = "Report by platform"
	PromptResultsToFile       = "Dump results to file"
	PromptAppendToExcludeFile = "Append all results to exclude file"
	PromptExit                = "Exit"
	PromptSaveJob             = "Save job"
	PromptBack                = "back"
)

type jobSaver interface {
	SaveJob(ctx context.Context, outcome *recommend.Outcome, jobID int, notes string) (int64, error)
}

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowResults, PromptJobDetails, PromptReportByPlatform, PromptResultsToFile, PromptAppendToExcludeFile, PromptExit},
}

func handleAction(ctx context.Context, action string, logger *zap.Logger, config *Config, saver jobSaver, outcome *recommend.Outcome) error {
	switch action {
	case PromptShowResults:
		return writeOutcome(os.Stdout, outcome, outputTable)
	case PromptJobDetails:
		return showDetails(ctx, logger, saver, outcome)
	case PromptReportByPlatform:
		pretty, _ := json.MarshalIndent(outcome.Jobs.ReportByPlatform(), "", "  ")
		logger.Info(string(pretty), zap.Int("jobs count", outcome.Jobs.Len()))
		return nil
	case PromptResultsToFile:
		filename, err := outcome.Jobs.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, config.Filters.ExcludeFile, outcome.Jobs)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// appendToExcludeFile records the listed jobs so later runs drop them, then
// removes them from the current list.
func appendToExcludeFile(logger *zap.Logger, excludeFile string, list *results.List) error {
	if excludeFile == "" {
		logger.Warn("exclude file is not configured",
			zap.String("hint", "set filters.exclude-file or pass --exclude-file"),
		)
		return nil
	}

	if list.Len() == 0 {
		logger.Info("nothing to exclude")
		return nil
	}

	excluded, err := results.ReadExcludeFile(excludeFile)
	if err != nil {
		return err
	}

	added := list.ToExcluded()
	excluded.Append(added)

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", len(added.Items)))

	list.Exclude(jobs.PostingKeyField, added.Keys())
	return nil
}

// showDetails lets the user pick jobs one by one, prints them in full and
// offers to save them.
func showDetails(ctx context.Context, logger *zap.Logger, saver jobSaver, outcome *recommend.Outcome) error {
	list := outcome.Jobs
	for {
		items := make([]string, 0, list.Len()+1)
		for _, job := range list.Items {
			items = append(items, fmt.Sprintf("%d %s / %s / %.1f", job.ID, job.Title, job.Company, job.MatchScore))
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := jobPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		id, err := strconv.Atoi(strings.Split(selected, " ")[0])
		if err != nil {
			return fmt.Errorf("parsing job id from %q: %w", selected, err)
		}

		job := list.FindByID(id)
		if job == nil {
			return fmt.Errorf("there is no such job id %d", id)
		}

		if err := encodeJSON(os.Stdout, job); err != nil {
			return err
		}

		actionPrompt := promptui.Select{
			Label: "Job action",
			Items: []string{PromptSaveJob, PromptBack},
		}
		_, action, err := actionPrompt.Run()
		if err != nil {
			return err
		}
		if action != PromptSaveJob {
			continue
		}

		notesPrompt := promptui.Prompt{Label: "Notes (optional)"}
		notes, err := notesPrompt.Run()
		if err != nil {
			return err
		}

		if err := saveJob(ctx, logger, saver, outcome, id, notes); err != nil {
			return err
		}
	}
}

// saveJob bookmarks a job. Duplicates and a disabled history are reported,
// not returned.
func saveJob(ctx context.Context, logger *zap.Logger, saver jobSaver, outcome *recommend.Outcome, jobID int, notes string) error {
	savedID, err := saver.SaveJob(ctx, outcome, jobID, notes)
	switch {
	case errors.Is(err, storage.ErrAlreadySaved):
		logger.Info("job already saved", zap.Int("job_id", jobID))
		return nil
	case errors.Is(err, recommend.ErrHistoryDisabled), errors.Is(err, recommend.ErrNotRecorded):
		logger.Warn("cannot save job", zap.Error(err), zap.String("hint", "set storage.enabled to true"))
		return nil
	case err != nil:
		return fmt.Errorf("saving job %d: %w", jobID, err)
	}

	logger.Info("job saved", zap.Int("job_id", jobID), zap.Int64("saved_id", savedID))
	return nil
}
