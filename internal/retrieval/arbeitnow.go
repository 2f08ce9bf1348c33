package retrieval

import (
	"context"
	"fmt"

	"github.com/spigell/job-recommender/internal/jobs"
)

const arbeitnowURL = "https://www.arbeitnow.com/api/job-board-api"

type arbeitnowResponse struct {
	Data []any `json:"data"`
}

type arbeitnowJob struct {
	Title       string   `json:"title"`
	CompanyName string   `json:"company_name"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	CreatedAt   string   `json:"created_at"`
	JobTypes    []string `json:"job_types"`
}

// Arbeitnow searches the public Arbeitnow job board API.
type Arbeitnow struct {
	client *Client
	URL    string
}

func NewArbeitnow(client *Client) *Arbeitnow {
	return &Arbeitnow{client: client, URL: arbeitnowURL}
}

func (s *Arbeitnow) Name() string { return "Arbeitnow" }

func (s *Arbeitnow) Search(ctx context.Context, q Query) ([]jobs.Posting, error) {
	var response arbeitnowResponse
	if err := s.client.getJSON(ctx, s.URL, nil, &response); err != nil {
		return nil, err
	}

	var listings []arbeitnowJob
	if err := decodeItems(response.Data, &listings); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}

	var postings []jobs.Posting
	for _, job := range listings {
		if len(postings) >= q.Limit {
			break
		}
		if !matchesQuery(q, append([]string{job.Title, job.Description}, job.Tags...)...) {
			continue
		}

		jobType := "Full-time"
		if len(job.JobTypes) > 0 {
			jobType = job.JobTypes[0]
		}

		postings = append(postings, jobs.Posting{
			Title:       orDefault(job.Title, "N/A"),
			Company:     orDefault(job.CompanyName, "N/A"),
			Location:    orDefault(job.Location, "Remote"),
			Description: plainText(job.Description),
			Skills:      limitTags(job.Tags),
			Platform:    s.Name(),
			URL:         orDefault(job.URL, "#"),
			PostedDate:  orDefault(job.CreatedAt, "N/A"),
			Salary:      "Not specified",
			JobType:     jobType,
		})
	}

	return postings, nil
}
