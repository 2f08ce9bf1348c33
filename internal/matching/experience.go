package matching

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Band is an experience level. Bands are ordered, the distance between two
// bands drives the experience score.
type Band int

const (
	BandEntry Band = iota
	BandMid
	BandSenior
	BandPrincipal
)

func (b Band) String() string {
	switch b {
	case BandEntry:
		return "entry"
	case BandMid:
		return "mid"
	case BandSenior:
		return "senior"
	case BandPrincipal:
		return "principal"
	default:
		return fmt.Sprintf("band(%d)", int(b))
	}
}

const neutralExperienceScore = 50.0

var firstInteger = regexp.MustCompile(`\d+`)

// Experience is the user's experience as given: either a year count or free
// text that may contain one. The zero value means no experience given.
type Experience struct {
	years   float64
	text    string
	numeric bool
}

// ExperienceYears builds an Experience from a year count.
func ExperienceYears(years float64) Experience {
	return Experience{years: years, numeric: true}
}

// ExperienceText builds an Experience from free text such as "5 years".
func ExperienceText(text string) Experience {
	return Experience{text: text}
}

// Years returns the year count: the number itself, or the first integer found
// in the text. Anything unparseable counts as 0.
func (e Experience) Years() float64 {
	if e.numeric {
		if math.IsNaN(e.years) || math.IsInf(e.years, 0) {
			return 0
		}
		return e.years
	}

	match := firstInteger.FindString(e.text)
	if match == "" {
		return 0
	}
	years, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return float64(years)
}

func (e Experience) String() string {
	if e.numeric {
		return strconv.FormatFloat(e.years, 'f', -1, 64)
	}
	return e.text
}

func (e Experience) MarshalJSON() ([]byte, error) {
	if e.numeric {
		return json.Marshal(e.years)
	}
	if e.text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(e.text)
}

// UnmarshalJSON accepts a number, a string or null.
func (e *Experience) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = Experience{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = ExperienceText(s)
		return nil
	}

	var years float64
	if err := json.Unmarshal(data, &years); err != nil {
		return fmt.Errorf("experience must be a number or a string: %w", err)
	}
	*e = ExperienceYears(years)
	return nil
}

// JobBand infers the required band from a job description. Bands are tried
// from entry to principal and the first one with a matching phrase wins.
// Descriptions without any phrase require a mid-level candidate.
func JobBand(description string) Band {
	lower := strings.ToLower(description)
	for band, phrases := range bandPhrases {
		for _, phrase := range phrases {
			if strings.Contains(lower, phrase) {
				return Band(band)
			}
		}
	}
	return BandMid
}

// BandForYears maps a year count to a band.
func BandForYears(years float64) Band {
	switch {
	case years < 2:
		return BandEntry
	case years < 5:
		return BandMid
	case years < 10:
		return BandSenior
	default:
		return BandPrincipal
	}
}

// ExperienceMatch scores how close the user's band is to the band the
// description asks for. An empty description is neutral.
func ExperienceMatch(exp Experience, description string) float64 {
	if strings.TrimSpace(description) == "" {
		return neutralExperienceScore
	}

	distance := int(JobBand(description)) - int(BandForYears(exp.Years()))
	if distance < 0 {
		distance = -distance
	}

	switch distance {
	case 0:
		return 100
	case 1:
		return 75
	case 2:
		return 50
	default:
		return 25
	}
}
