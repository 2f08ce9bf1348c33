package retrieval

import (
	"context"
	"fmt"

	"github.com/spigell/job-recommender/internal/jobs"
)

const remotiveURL = "https://remotive.com/api/remote-jobs"

type remotiveResponse struct {
	Jobs []any `json:"jobs"`
}

type remotiveJob struct {
	Title           string `json:"title"`
	CompanyName     string `json:"company_name"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	JobType         string `json:"job_type"`
	URL             string `json:"url"`
	PublicationDate string `json:"publication_date"`
	Salary          string `json:"salary"`
}

// Remotive searches the public Remotive API. Every listing is remote.
type Remotive struct {
	client *Client
	URL    string
}

func NewRemotive(client *Client) *Remotive {
	return &Remotive{client: client, URL: remotiveURL}
}

func (s *Remotive) Name() string { return "Remotive" }

func (s *Remotive) Search(ctx context.Context, q Query) ([]jobs.Posting, error) {
	var response remotiveResponse
	if err := s.client.getJSON(ctx, s.URL, nil, &response); err != nil {
		return nil, err
	}

	var listings []remotiveJob
	if err := decodeItems(response.Jobs, &listings); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}

	var postings []jobs.Posting
	for _, job := range listings {
		if len(postings) >= q.Limit {
			break
		}
		if !matchesQuery(q, job.Title, job.Description, job.Category, job.JobType) {
			continue
		}

		jobType := orDefault(job.JobType, "Full-time")
		postings = append(postings, jobs.Posting{
			Title:       orDefault(job.Title, "N/A"),
			Company:     orDefault(job.CompanyName, "N/A"),
			Location:    "Remote",
			Description: plainText(job.Description),
			Skills:      []string{orDefault(job.Category, "General"), jobType},
			Platform:    s.Name(),
			URL:         orDefault(job.URL, "#"),
			PostedDate:  orDefault(job.PublicationDate, "N/A"),
			Salary:      orDefault(job.Salary, "Not specified"),
			JobType:     jobType,
		})
	}

	return postings, nil
}
