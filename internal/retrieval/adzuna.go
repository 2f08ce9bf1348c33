package retrieval

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/jobs"
)

const (
	adzunaURL     = "https://api.adzuna.com"
	adzunaCountry = "us"
)

// AdzunaCredentials are the keys of the Adzuna API. Without both the source
// is skipped.
type AdzunaCredentials struct {
	AppID   string
	AppKey  string
	Country string
}

type adzunaResponse struct {
	Results []any `json:"results"`
}

type adzunaJob struct {
	Title   string `json:"title"`
	Company struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	Description  string  `json:"description"`
	RedirectURL  string  `json:"redirect_url"`
	Created      string  `json:"created"`
	SalaryMin    float64 `json:"salary_min"`
	SalaryMax    float64 `json:"salary_max"`
	ContractTime string  `json:"contract_time"`
}

// Adzuna searches the keyed Adzuna API.
type Adzuna struct {
	client *Client
	creds  AdzunaCredentials
	URL    string
}

func NewAdzuna(client *Client, creds AdzunaCredentials) *Adzuna {
	if strings.TrimSpace(creds.Country) == "" {
		creds.Country = adzunaCountry
	}
	return &Adzuna{client: client, creds: creds, URL: adzunaURL}
}

func (s *Adzuna) Name() string { return "Adzuna" }

func (s *Adzuna) Search(ctx context.Context, q Query) ([]jobs.Posting, error) {
	if s.creds.AppID == "" || s.creds.AppKey == "" {
		s.client.logger.Warn("skipping source",
			zap.String("source", s.Name()),
			zap.String("reason", "api credentials are not configured"),
		)
		return nil, nil
	}

	params := url.Values{}
	params.Set("app_id", s.creds.AppID)
	params.Set("app_key", s.creds.AppKey)
	params.Set("results_per_page", strconv.Itoa(q.Limit))
	params.Set("what", strings.Join(q.Keywords, " "))
	params.Set("content-type", "application/json")
	if q.Location != "" {
		params.Set("where", q.Location)
	}

	endpoint := fmt.Sprintf("%s/v1/api/jobs/%s/search/1", s.URL, url.PathEscape(s.creds.Country))

	var response adzunaResponse
	if err := s.client.getJSON(ctx, endpoint, params, &response); err != nil {
		return nil, err
	}

	var listings []adzunaJob
	if err := decodeItems(response.Results, &listings); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}

	postings := make([]jobs.Posting, 0, len(listings))
	for _, job := range listings {
		if len(postings) >= q.Limit {
			break
		}
		postings = append(postings, jobs.Posting{
			Title:       orDefault(job.Title, "N/A"),
			Company:     orDefault(job.Company.DisplayName, "N/A"),
			Location:    orDefault(job.Location.DisplayName, "N/A"),
			Description: plainText(job.Description),
			Skills:      append([]string(nil), q.Keywords...),
			Platform:    s.Name(),
			URL:         orDefault(job.RedirectURL, "#"),
			PostedDate:  orDefault(job.Created, "N/A"),
			Salary:      salaryRange(job.SalaryMin, job.SalaryMax),
			JobType:     orDefault(job.ContractTime, "Full-time"),
		})
	}

	return postings, nil
}
