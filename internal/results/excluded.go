package results

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

// ExcludedJobs is the content of an exclude file.
type ExcludedJobs struct {
	Items []*ExcludedJob
}

type ExcludedJob struct {
	Key        string
	URL        string
	Title      string
	Company    string
	ExcludedAt time.Time
}

func (l *List) ToExcluded() *ExcludedJobs {
	excluded := &ExcludedJobs{}
	for _, job := range l.Items {
		excluded.Items = append(excluded.Items, &ExcludedJob{
			Key:        job.Key(),
			URL:        job.URL,
			Title:      job.Title,
			Company:    job.Company,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// ReadExcludeFile loads an exclude file. A missing or empty file yields an
// empty set.
func ReadExcludeFile(path string) (*ExcludedJobs, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &ExcludedJobs{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedJobs{}, nil
	}

	var excluded ExcludedJobs
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedJobs) Append(s *ExcludedJobs) {
	e.Items = append(e.Items, s.Items...)
}

// URLs returns the non-placeholder URLs of the excluded jobs.
func (e *ExcludedJobs) URLs() []string {
	urls := make([]string, 0, len(e.Items))
	for _, job := range e.Items {
		if job.URL != "" && job.URL != "#" {
			urls = append(urls, job.URL)
		}
	}
	return urls
}

func (e *ExcludedJobs) Keys() []string {
	keys := make([]string, 0, len(e.Items))
	for _, job := range e.Items {
		keys = append(keys, job.Key)
	}
	return keys
}

func (e *ExcludedJobs) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
