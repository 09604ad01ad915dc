package meiliindex

import (
	"errors"
	"io/fs"
	"strconv"

	"github.com/lukasmoellerch/tts-data-go/pkg/ttsupdate"
)

type Document = map[string]interface{}

// CourseUnits is a course of the minimized index with the curricular units
// found in its semester files.
type CourseUnits struct {
	Course ttsupdate.CourseEntry
	Units  []ttsupdate.CurricularUnit
}

func coursesSearchableAttributes() *[]string {
	return &[]string{
		"acronym",
		"name",
	}
}

func coursesFilterableAttributes() *[]string {
	return &[]string{
		"course_id",
	}
}

func unitsSearchableAttributes() *[]string {
	return &[]string{
		"acronym",
		"name",
		"course_acronym",
	}
}

func unitsFilterableAttributes() *[]string {
	return &[]string{
		"course_id",
		"course_acronym",
		"curricular_year",
		"semester",
	}
}

// LoadCourses reads mini_courses.json and both semester files of every
// course. Courses whose semester files were never written have no units.
func LoadCourses(layout ttsupdate.Layout) ([]CourseUnits, error) {
	courses, err := ttsupdate.LoadIndex(layout)
	if err != nil {
		return nil, err
	}

	out := make([]CourseUnits, 0, len(courses))
	for _, course := range courses {
		entry := CourseUnits{Course: course}
		seen := make(map[int]bool)
		for _, semester := range []int{1, 2} {
			units, err := ttsupdate.LoadSemester(layout, course.CourseID, semester)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			// annual units are stored in both files
			for _, unit := range units {
				if seen[unit.OccurrenceID] {
					continue
				}
				seen[unit.OccurrenceID] = true
				entry.Units = append(entry.Units, unit)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func CourseDocument(c CourseUnits) Document {
	return Document{
		"id":        strconv.Itoa(c.Course.CourseID),
		"course_id": c.Course.CourseID,
		"acronym":   c.Course.Acronym,
		"units":     len(c.Units),
	}
}

// UnitDocuments builds one document per unit. The same occurrence can be
// part of several courses, so ids combine course and occurrence.
func UnitDocuments(c CourseUnits) []Document {
	docs := make([]Document, 0, len(c.Units))
	for _, unit := range c.Units {
		docs = append(docs, Document{
			"id":               strconv.Itoa(c.Course.CourseID) + "-" + strconv.Itoa(unit.OccurrenceID),
			"course_id":        c.Course.CourseID,
			"course_acronym":   c.Course.Acronym,
			"acronym":          unit.Acronym,
			"name":             unit.Name,
			"pv_ocorrencia_id": unit.OccurrenceID,
			"curricular_year":  unit.CurricularYear,
			"semester":         unit.Semester,
			"url":              unit.URL,
		})
	}
	return docs
}

func chunk(docs []Document, size int) [][]Document {
	var chunks [][]Document
	for len(docs) > size {
		chunks = append(chunks, docs[:size])
		docs = docs[size:]
	}
	if len(docs) > 0 {
		chunks = append(chunks, docs)
	}
	return chunks
}
