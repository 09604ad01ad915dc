package ttsupdate

import (
	"io"

	"github.com/gocarina/gocsv"
)

type Step string

const (
	StepUnits Step = "units"
	StepExams Step = "exams"
)

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// CourseResult is the outcome of one course in one batch step.
type CourseResult struct {
	RunID    string `csv:"run_id"`
	Step     Step   `csv:"step"`
	CourseID int    `csv:"course_id"`
	Acronym  string `csv:"acronym"`
	Status   string `csv:"status"`
	Files    int    `csv:"files"`
	Error    string `csv:"error"`

	Err error `csv:"-"`
}

// Report collects the course results of a run in the order they happened.
type Report struct {
	RunID   string
	Results []CourseResult
}

func (r *Report) add(result CourseResult) {
	result.RunID = r.RunID
	r.Results = append(r.Results, result)
}

func (r *Report) Failed() []CourseResult {
	var failed []CourseResult
	for _, result := range r.Results {
		if result.Status == StatusFailed {
			failed = append(failed, result)
		}
	}
	return failed
}

// WriteCSV writes one row per course result, with a header.
func (r *Report) WriteCSV(w io.Writer) error {
	results := r.Results
	if results == nil {
		results = []CourseResult{}
	}
	return gocsv.Marshal(&results, w)
}
