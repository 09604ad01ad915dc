package ttsupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
)

// CourseEntry is one row of the minimized index.
type CourseEntry struct {
	CourseID int    `json:"course_id"`
	Acronym  string `json:"acronym"`
}

// CatalogSource returns the upstream course directory, one JSON object per
// course.
type CatalogSource interface {
	FetchCatalog(ctx context.Context, link string) ([]json.RawMessage, error)
}

// SizeReport compares the encoded sizes of courses.json and mini_courses.json.
type SizeReport struct {
	FullBytes int
	MiniBytes int
}

// Reduction is the percentage of bytes saved by the minimized index.
func (s SizeReport) Reduction() float64 {
	if s.FullBytes == 0 {
		return 0
	}
	return 100 - float64(s.MiniBytes)/float64(s.FullBytes)*100
}

type Index struct {
	Full  []json.RawMessage
	Mini  []CourseEntry
	Sizes SizeReport
}

// Minimize keeps course_id and acronym of every entry, drops repeated ids and
// sorts by acronym.
func Minimize(full []json.RawMessage) ([]CourseEntry, error) {
	mini := make([]CourseEntry, 0, len(full))
	seen := make(map[int]bool)

	for i, raw := range full {
		var fields struct {
			CourseID *int    `json:"course_id"`
			Acronym  *string `json:"acronym"`
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%w at position %d: %s", ErrMalformedCourse, i, err)
		}
		if fields.CourseID == nil || fields.Acronym == nil {
			return nil, fmt.Errorf("%w at position %d: missing course_id or acronym", ErrMalformedCourse, i)
		}
		if seen[*fields.CourseID] {
			continue
		}
		seen[*fields.CourseID] = true
		mini = append(mini, CourseEntry{
			CourseID: *fields.CourseID,
			Acronym:  *fields.Acronym,
		})
	}

	sort.SliceStable(mini, func(i, j int) bool {
		return mini[i].Acronym < mini[j].Acronym
	})
	return mini, nil
}

// BuildIndex fetches the course directory and writes courses.json and
// mini_courses.json. Nothing is written if fetching or minimizing fails.
func BuildIndex(ctx context.Context, source CatalogSource, link string, layout Layout, log zerolog.Logger) (*Index, error) {
	log.Info().Str("url", link).Msg("downloading course catalog")
	full, err := source.FetchCatalog(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch course catalog: %w", err)
	}
	if full == nil {
		full = []json.RawMessage{}
	}

	log.Debug().Msg("removing unnecessary fields")
	mini, err := Minimize(full)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(layout.Root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data root: %w", err)
	}

	index := &Index{Full: full, Mini: mini}

	log.Info().Str("path", layout.CoursesPath()).Msg("saving course catalog")
	index.Sizes.FullBytes, err = writeJSON(layout.CoursesPath(), full)
	if err != nil {
		return nil, err
	}

	log.Info().Str("path", layout.MiniCoursesPath()).Msg("saving minimized course index")
	index.Sizes.MiniBytes, err = writeJSON(layout.MiniCoursesPath(), mini)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("courses_bytes", index.Sizes.FullBytes).
		Int("mini_courses_bytes", index.Sizes.MiniBytes).
		Str("reduction", fmt.Sprintf("%.3f%%", index.Sizes.Reduction())).
		Msg("minimized course index")

	return index, nil
}

// LoadIndex reads mini_courses.json back from disk.
func LoadIndex(layout Layout) ([]CourseEntry, error) {
	var courses []CourseEntry
	err := readJSON(layout.MiniCoursesPath(), &courses)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrCatalogMissing, layout.MiniCoursesPath())
	}
	if err != nil {
		return nil, err
	}
	return courses, nil
}
