package retrieval

import (
	"context"
	"fmt"

	"github.com/spigell/job-recommender/internal/jobs"
)

// Source is a job board that can be searched.
type Source interface {
	Name() string
	Search(ctx context.Context, q Query) ([]jobs.Posting, error)
}

const (
	SourceRemoteOK       = "remoteok"
	SourceRemotive       = "remotive"
	SourceArbeitnow      = "arbeitnow"
	SourceWeWorkRemotely = "weworkremotely"
	SourceFindwork       = "findwork"
	SourceHimalayas      = "himalayas"
	SourceAdzuna         = "adzuna"
)

// SourceOrder is the order in which source results are concatenated.
var SourceOrder = []string{
	SourceRemoteOK,
	SourceRemotive,
	SourceArbeitnow,
	SourceWeWorkRemotely,
	SourceFindwork,
	SourceHimalayas,
	SourceAdzuna,
}

// SourcesConfig selects and configures sources.
type SourcesConfig struct {
	// Enabled lists source names; empty enables all of them.
	Enabled []string
	Adzuna  AdzunaCredentials
}

// NewSources builds the enabled sources in SourceOrder.
func NewSources(client *Client, cfg SourcesConfig) ([]Source, error) {
	enabled := make(map[string]bool, len(cfg.Enabled))
	for _, name := range cfg.Enabled {
		if !isKnownSource(name) {
			return nil, fmt.Errorf("unknown source %q", name)
		}
		enabled[name] = true
	}

	var sources []Source
	for _, name := range SourceOrder {
		if len(enabled) > 0 && !enabled[name] {
			continue
		}
		sources = append(sources, newSource(name, client, cfg))
	}
	return sources, nil
}

func newSource(name string, client *Client, cfg SourcesConfig) Source {
	switch name {
	case SourceRemoteOK:
		return NewRemoteOK(client)
	case SourceRemotive:
		return NewRemotive(client)
	case SourceArbeitnow:
		return NewArbeitnow(client)
	case SourceWeWorkRemotely:
		return NewWeWorkRemotely(client)
	case SourceFindwork:
		return NewFindwork(client)
	case SourceHimalayas:
		return NewHimalayas(client)
	default:
		return NewAdzuna(client, cfg.Adzuna)
	}
}

func isKnownSource(name string) bool {
	for _, known := range SourceOrder {
		if known == name {
			return true
		}
	}
	return false
}
