package retrieval

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/spigell/job-recommender/internal/jobs"
)

const (
	weWorkRemotelyURL = "https://weworkremotely.com"
	findworkURL       = "https://findwork.dev"
	himalayasURL      = "https://himalayas.app"
)

// WeWorkRemotely scrapes the WeWorkRemotely search page.
type WeWorkRemotely struct {
	client *Client
	URL    string
}

func NewWeWorkRemotely(client *Client) *WeWorkRemotely {
	return &WeWorkRemotely{client: client, URL: weWorkRemotelyURL}
}

func (s *WeWorkRemotely) Name() string { return "WeWorkRemotely" }

func (s *WeWorkRemotely) Search(ctx context.Context, q Query) ([]jobs.Posting, error) {
	params := url.Values{}
	params.Set("term", strings.Join(q.Keywords, " "))

	doc, err := s.client.getHTML(ctx, s.URL+"/remote-jobs/search", params)
	if err != nil {
		return nil, err
	}

	// Up to twice the limit is inspected, incomplete listings are skipped.
	listings := doc.Find("li.feature")
	var postings []jobs.Posting
	listings.Slice(0, min(q.Limit*2, listings.Length())).
		EachWithBreak(func(_ int, listing *goquery.Selection) bool {
			if len(postings) >= q.Limit {
				return false
			}

			title := text(listing.Find("span.title"))
			company := text(listing.Find("span.company"))
			if title == "" || company == "" {
				return true
			}

			postings = append(postings, jobs.Posting{
				Title:       title,
				Company:     company,
				Location:    orDefault(text(listing.Find("span.region")), "Remote"),
				Description: "View full details on WeWorkRemotely",
				Skills:      append([]string(nil), q.Keywords...),
				Platform:    s.Name(),
				URL:         link(s.URL, listing),
				PostedDate:  "Recently",
				Salary:      "Not specified",
				JobType:     "Remote",
			})
			return true
		})

	return postings, nil
}

// Findwork scrapes the findwork.dev job list.
type Findwork struct {
	client *Client
	URL    string
}

func NewFindwork(client *Client) *Findwork {
	return &Findwork{client: client, URL: findworkURL}
}

func (s *Findwork) Name() string { return "Findwork" }

func (s *Findwork) Search(ctx context.Context, q Query) ([]jobs.Posting, error) {
	params := url.Values{}
	params.Set("search", strings.Join(q.Keywords, "+"))

	doc, err := s.client.getHTML(ctx, s.URL+"/jobs", params)
	if err != nil {
		return nil, err
	}

	var postings []jobs.Posting
	doc.Find("li.job").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(postings) >= q.Limit {
			return false
		}

		postings = append(postings, jobs.Posting{
			Title:       orDefault(text(card.Find("h2")), "N/A"),
			Company:     orDefault(text(card.Find("a.company")), "N/A"),
			Location:    orDefault(text(card.Find("span.location")), "Remote"),
			Description: "View job details on Findwork.dev",
			Skills:      append([]string(nil), q.Keywords...),
			Platform:    s.Name(),
			URL:         link(s.URL, card),
			PostedDate:  "Recently",
			Salary:      "Not specified",
			JobType:     "Full-time",
		})
		return true
	})

	return postings, nil
}

// Himalayas scrapes the himalayas.app listing for the joined keywords.
type Himalayas struct {
	client *Client
	URL    string
}

func NewHimalayas(client *Client) *Himalayas {
	return &Himalayas{client: client, URL: himalayasURL}
}

func (s *Himalayas) Name() string { return "Himalayas" }

func (s *Himalayas) Search(ctx context.Context, q Query) ([]jobs.Posting, error) {
	doc, err := s.client.getHTML(ctx, s.URL+"/jobs/"+url.PathEscape(strings.Join(q.Keywords, "-")), nil)
	if err != nil {
		return nil, err
	}

	var postings []jobs.Posting
	cards := doc.Find("div.job-card")
	cards.Slice(0, min(q.Limit, cards.Length())).Each(func(_ int, card *goquery.Selection) {
		title := text(card.Find("h3"))
		if title == "" {
			return
		}

		postings = append(postings, jobs.Posting{
			Title:       title,
			Company:     orDefault(text(card.Find("span.company-name")), "N/A"),
			Location:    "Remote",
			Description: "View full details on Himalayas",
			Skills:      append([]string(nil), q.Keywords...),
			Platform:    s.Name(),
			URL:         link(s.URL, card),
			PostedDate:  "Recently",
			Salary:      "Not specified",
			JobType:     "Remote",
		})
	})

	return postings, nil
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.First().Text())
}

// link resolves the first anchor of s against base, "#" when there is none.
func link(base string, s *goquery.Selection) string {
	href, ok := s.Find("a[href]").First().Attr("href")
	if !ok {
		return "#"
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
