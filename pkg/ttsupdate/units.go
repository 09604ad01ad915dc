package ttsupdate

import (
	"context"
	"fmt"
	"os"

	"github.com/lukasmoellerch/tts-data-go/pkg/sigarrascrape"
)

// CourseSource is the per-course side of the catalog backend.
type CourseSource interface {
	CourseURL(courseID int) string
	CurricularUnits(ctx context.Context, courseID int) ([]sigarrascrape.Unit, error)
	Exams(ctx context.Context, courseID int) ([]sigarrascrape.Exam, error)
}

// CurricularUnit is the shape stored in SEMESTER1.json and SEMESTER2.json.
type CurricularUnit struct {
	Acronym        string `json:"acronym"`
	CurricularYear int    `json:"curricular_year"`
	Name           string `json:"name"`
	OccurrenceID   int    `json:"pv_ocorrencia_id"`
	Semester       string `json:"semester"`
	URL            string `json:"url"`
}

// ProjectUnit reduces an upstream unit. Units offered in several curricular
// years keep the first one.
func ProjectUnit(unit sigarrascrape.Unit) (CurricularUnit, error) {
	if len(unit.CurricularYears) == 0 {
		return CurricularUnit{}, fmt.Errorf("unit %s (%d) has no curricular year", unit.Acronym, unit.OccurrenceID)
	}
	switch unit.Semester {
	case "1", "2", "A":
	default:
		return CurricularUnit{}, fmt.Errorf("unit %s (%d) has unknown semester %q", unit.Acronym, unit.OccurrenceID, unit.Semester)
	}

	return CurricularUnit{
		Acronym:        unit.Acronym,
		CurricularYear: unit.CurricularYears[0],
		Name:           unit.Name,
		OccurrenceID:   unit.OccurrenceID,
		Semester:       unit.Semester,
		URL:            unit.URL,
	}, nil
}

// SplitBySemester buckets units into the two semesters, keeping their order.
// Annual units go into both.
func SplitBySemester(units []CurricularUnit) (sem1 []CurricularUnit, sem2 []CurricularUnit) {
	sem1 = make([]CurricularUnit, 0)
	sem2 = make([]CurricularUnit, 0)
	for _, unit := range units {
		switch unit.Semester {
		case "1":
			sem1 = append(sem1, unit)
		case "2":
			sem2 = append(sem2, unit)
		case "A":
			sem1 = append(sem1, unit)
			sem2 = append(sem2, unit)
		}
	}
	return sem1, sem2
}

// FetchUnits retrieves a course's curricular units split by semester.
func FetchUnits(ctx context.Context, source CourseSource, courseID int) ([]CurricularUnit, []CurricularUnit, error) {
	upstream, err := source.CurricularUnits(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}

	units := make([]CurricularUnit, 0, len(upstream))
	for _, u := range upstream {
		unit, err := ProjectUnit(u)
		if err != nil {
			return nil, nil, fmt.Errorf("course %d: %w", courseID, err)
		}
		units = append(units, unit)
	}

	sem1, sem2 := SplitBySemester(units)
	return sem1, sem2, nil
}

func writeUnits(layout Layout, courseID int, sem1, sem2 []CurricularUnit) error {
	if err := os.MkdirAll(layout.CourseDir(courseID), 0755); err != nil {
		return fmt.Errorf("failed to create course directory: %w", err)
	}
	if _, err := writeJSON(layout.SemesterPath(courseID, 1), sem1); err != nil {
		return err
	}
	if _, err := writeJSON(layout.SemesterPath(courseID, 2), sem2); err != nil {
		return err
	}
	return nil
}

// LoadSemester reads back one semester file of a course.
func LoadSemester(layout Layout, courseID int, semester int) ([]CurricularUnit, error) {
	var units []CurricularUnit
	if err := readJSON(layout.SemesterPath(courseID, semester), &units); err != nil {
		return nil, err
	}
	return units, nil
}
