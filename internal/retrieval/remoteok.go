package retrieval

import (
	"context"
	"fmt"

	"github.com/spigell/job-recommender/internal/jobs"
)

const (
	remoteOKURL = "https://remoteok.com/api"
	// remoteOKScan caps how many listings are inspected per request.
	remoteOKScan = 50
)

type remoteOKJob struct {
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	Date        string   `json:"date"`
	SalaryMin   float64  `json:"salary_min"`
	SalaryMax   float64  `json:"salary_max"`
}

// RemoteOK searches the public RemoteOK API. The first array element of the
// response is metadata, not a job.
type RemoteOK struct {
	client *Client
	URL    string
}

func NewRemoteOK(client *Client) *RemoteOK {
	return &RemoteOK{client: client, URL: remoteOKURL}
}

func (s *RemoteOK) Name() string { return "RemoteOK" }

func (s *RemoteOK) Search(ctx context.Context, q Query) ([]jobs.Posting, error) {
	var items []any
	if err := s.client.getJSON(ctx, s.URL, nil, &items); err != nil {
		return nil, err
	}

	if len(items) <= 1 {
		return nil, nil
	}
	items = items[1:]
	if len(items) > remoteOKScan {
		items = items[:remoteOKScan]
	}

	var listings []remoteOKJob
	if err := decodeItems(items, &listings); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}

	var postings []jobs.Posting
	for _, job := range listings {
		if len(postings) >= q.Limit {
			break
		}
		if !matchesQuery(q, append([]string{job.Position, job.Description}, job.Tags...)...) {
			continue
		}

		postings = append(postings, jobs.Posting{
			Title:       orDefault(job.Position, "N/A"),
			Company:     orDefault(job.Company, "N/A"),
			Location:    orDefault(job.Location, "Remote"),
			Description: plainText(job.Description),
			Skills:      limitTags(job.Tags),
			Platform:    s.Name(),
			URL:         orDefault(job.URL, "#"),
			PostedDate:  orDefault(job.Date, "N/A"),
			Salary:      salaryRange(job.SalaryMin, job.SalaryMax),
			JobType:     "Remote",
		})
	}

	return postings, nil
}

// salaryRange formats a salary range, or "Not specified" without a minimum.
func salaryRange(minimum, maximum float64) string {
	if minimum == 0 {
		return "Not specified"
	}
	if maximum == 0 {
		return fmt.Sprintf("$%.0f-$N/A", minimum)
	}
	return fmt.Sprintf("$%.0f-$%.0f", minimum, maximum)
}
