// Package recommend wires retrieval, ranking, filtering and history into the
// form, chat and résumé recommendation flows.
package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-recommender/internal/ai"
	"github.com/spigell/job-recommender/internal/filtering"
	"github.com/spigell/job-recommender/internal/jobs"
	"github.com/spigell/job-recommender/internal/logger"
	"github.com/spigell/job-recommender/internal/matching"
	"github.com/spigell/job-recommender/internal/profile"
	"github.com/spigell/job-recommender/internal/results"
	"github.com/spigell/job-recommender/internal/retrieval"
	"github.com/spigell/job-recommender/internal/storage"
)

const chatKeywordsLength = 100

type JobRetriever interface {
	Retrieve(ctx context.Context, query, location string, maxJobs int) ([]jobs.Posting, error)
}

// History records searches and bookmarks. *storage.Store satisfies it.
type History interface {
	SaveSearch(ctx context.Context, search *storage.Search) (string, error)
	SaveResults(ctx context.Context, searchID string, jobs []matching.ScoredJob) error
	SaveJob(ctx context.Context, userID, searchID string, position int, notes string) (int64, error)
}

var (
	ErrHistoryDisabled = errors.New("search history is disabled")
	ErrNotRecorded     = errors.New("search was not recorded")
)

type Config struct {
	MaxJobs int
	UserID  string
	Filters *filtering.Config
}

type Deps struct {
	Retriever JobRetriever
	Filters   []filtering.Filter
	// History and Extractor are optional.
	History   History
	Extractor ai.Extractor
	Logger    *zap.Logger
}

type Service struct {
	cfg       Config
	retriever JobRetriever
	filters   []filtering.Filter
	history   History
	extractor ai.Extractor
	logger    *zap.Logger
}

// FormRequest is the structured search form.
type FormRequest struct {
	JobTitle   string              `json:"job_title,omitempty"`
	Skills     []string            `json:"skills,omitempty"`
	Experience matching.Experience `json:"experience"`
	Keywords   string              `json:"keywords,omitempty"`
	Location   string              `json:"location,omitempty"`
}

// Outcome is the result of one recommendation flow.
type Outcome struct {
	// SearchID is empty when the search was not recorded.
	SearchID string               `json:"search_id,omitempty"`
	Kind     storage.Kind         `json:"kind"`
	Query    string               `json:"query"`
	Profile  matching.UserProfile `json:"profile"`
	Resume   *profile.Resume      `json:"resume,omitempty"`
	Jobs     *results.List        `json:"-"`
	Steps    []filtering.Step     `json:"steps"`

	// positions maps job ids to their stored result position.
	positions map[int]int
}

func New(cfg *Config, deps *Deps) (*Service, error) {
	if deps == nil || deps.Retriever == nil {
		return nil, errors.New("job retriever is required")
	}

	s := &Service{
		retriever: deps.Retriever,
		filters:   deps.Filters,
		history:   deps.History,
		extractor: deps.Extractor,
		logger:    deps.Logger,
	}
	if cfg != nil {
		s.cfg = *cfg
	}
	if s.cfg.MaxJobs <= 0 {
		s.cfg.MaxJobs = retrieval.DefaultMaxJobs
	}
	if s.cfg.Filters == nil {
		s.cfg.Filters = &filtering.Config{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s, nil
}

// Form searches by the desired title, or the first skill when no title is
// given, and ranks against the whole form.
func (s *Service) Form(ctx context.Context, req FormRequest) (*Outcome, error) {
	p := matching.UserProfile{
		Skills:     req.Skills,
		Experience: req.Experience,
		JobTitle:   strings.TrimSpace(req.JobTitle),
		Keywords:   req.Keywords,
	}

	query := p.JobTitle
	if query == "" && len(req.Skills) > 0 {
		query = strings.TrimSpace(req.Skills[0])
	}

	return s.recommend(ctx, search{
		kind:     storage.KindForm,
		query:    query,
		location: req.Location,
		profile:  p,
		payload:  req,
		keywords: strings.Join(req.Skills, ", "),
	})
}

// Chat searches by a free-text message and ranks against it as keywords.
func (s *Service) Chat(ctx context.Context, message string) (*Outcome, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.New("message must not be empty")
	}

	return s.recommend(ctx, search{
		kind:     storage.KindChat,
		query:    message,
		profile:  matching.UserProfile{Keywords: message},
		payload:  map[string]string{"message": message},
		keywords: jobs.Truncate(message, chatKeywordsLength),
	})
}

// CV searches and ranks by the profile extracted from résumé text.
func (s *Service) CV(ctx context.Context, text string) (*Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, profile.ErrEmptyDocument
	}

	resume := profile.Parse(text)
	if s.extractor != nil {
		extraction, err := s.extractor.Extract(ctx, text)
		if err != nil {
			s.logger.Warn("falling back to vocabulary extraction", zap.Error(err))
		} else {
			resume.Merge(extraction)
		}
	}

	s.logger.Info("resume parsed",
		zap.String("job_title", resume.JobTitle),
		zap.Int("skills", len(resume.Skills)),
		zap.String("extractor", resume.Extractor),
	)

	outcome, err := s.recommend(ctx, search{
		kind:     storage.KindCV,
		query:    resume.SearchQuery(),
		profile:  resume.Profile(),
		payload:  resume,
		keywords: strings.Join(resume.Skills, ", "),
	})
	if err != nil {
		return nil, err
	}
	outcome.Resume = resume
	return outcome, nil
}

type search struct {
	kind     storage.Kind
	query    string
	location string
	profile  matching.UserProfile
	payload  any
	keywords string
}

func (s *Service) recommend(ctx context.Context, req search) (*Outcome, error) {
	log := s.logger.With(zap.String("kind", string(req.kind)), zap.String("query", req.query))

	postings, err := s.retriever.Retrieve(ctx, req.query, req.location, s.cfg.MaxJobs)
	if err != nil {
		return nil, fmt.Errorf("retrieve jobs: %w", err)
	}
	log.Info("jobs retrieved", zap.Int("count", len(postings)))

	ranked := results.New(matching.Rank(req.profile, postings))

	filtered, steps, err := filtering.Run(ctx, s.cfg.Filters, filtering.Deps{Logger: log}, s.filters, ranked)
	if err != nil {
		return nil, fmt.Errorf("filter results: %w", err)
	}

	outcome := &Outcome{
		Kind:    req.kind,
		Query:   req.query,
		Profile: req.profile,
		Jobs:    filtered,
		Steps:   steps,
	}
	outcome.SearchID = s.record(ctx, log, req, filtered.Items)
	if outcome.SearchID != "" {
		outcome.positions = make(map[int]int, filtered.Len())
		for i, job := range filtered.Items {
			outcome.positions[job.ID] = i
		}
	}

	return outcome, nil
}

// record persists the search. Failures are logged only.
func (s *Service) record(ctx context.Context, log *zap.Logger, req search, ranked []matching.ScoredJob) string {
	if s.history == nil {
		return ""
	}

	payload, err := json.Marshal(req.payload)
	if err != nil {
		log.Warn("encoding search payload", zap.Error(err))
		payload = nil
	}

	id, err := s.history.SaveSearch(ctx, &storage.Search{
		UserID:   s.cfg.UserID,
		Kind:     req.kind,
		Payload:  payload,
		Keywords: req.keywords,
	})
	if err != nil {
		log.Warn("saving search history", zap.Error(err))
		return ""
	}

	if err := s.history.SaveResults(ctx, id, ranked); err != nil {
		log.Warn("saving search results", zap.String(logger.FieldSearchID, id), zap.Error(err))
	}

	log.Debug("search recorded", zap.String(logger.FieldSearchID, id))
	return id
}

// SaveJob bookmarks a job of a recorded outcome for the configured user.
func (s *Service) SaveJob(ctx context.Context, outcome *Outcome, jobID int, notes string) (int64, error) {
	if s.history == nil {
		return 0, ErrHistoryDisabled
	}
	if outcome == nil || outcome.SearchID == "" {
		return 0, ErrNotRecorded
	}

	position, ok := outcome.positions[jobID]
	if !ok {
		return 0, fmt.Errorf("job %d is not part of search %s", jobID, outcome.SearchID)
	}

	id, err := s.history.SaveJob(ctx, s.cfg.UserID, outcome.SearchID, position, strings.TrimSpace(notes))
	if err != nil {
		return 0, err
	}

	s.logger.Info("job saved",
		zap.String(logger.FieldSearchID, outcome.SearchID),
		zap.Int("job_id", jobID),
		zap.Int64("saved_id", id),
	)
	return id, nil
}
