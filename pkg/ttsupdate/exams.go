package ttsupdate

import (
	"context"
	"fmt"
	"os"

	"github.com/lukasmoellerch/tts-data-go/pkg/sigarrascrape"
)

// ExamRecord is the shape stored in EXAMS.json.
type ExamRecord struct {
	OccurrenceID    int      `json:"pv_ocorrencia_id"`
	StartTimestamp  int64    `json:"start_timestamp"`
	FinishTimestamp int64    `json:"finish_timestamp"`
	Rooms           []string `json:"rooms"`
}

// ReduceExam converts an upstream exam. A missing room list becomes empty.
func ReduceExam(exam sigarrascrape.Exam) ExamRecord {
	rooms := make([]string, len(exam.Rooms))
	copy(rooms, exam.Rooms)

	return ExamRecord{
		OccurrenceID:    exam.OccurrenceID,
		StartTimestamp:  exam.Start.Unix(),
		FinishTimestamp: exam.Finish.Unix(),
		Rooms:           rooms,
	}
}

// FetchExams retrieves the scheduled exams of a course.
func FetchExams(ctx context.Context, source CourseSource, courseID int) ([]ExamRecord, error) {
	exams, err := source.Exams(ctx, courseID)
	if err != nil {
		return nil, err
	}

	records := make([]ExamRecord, 0, len(exams))
	for _, exam := range exams {
		records = append(records, ReduceExam(exam))
	}
	return records, nil
}

func writeExams(layout Layout, courseID int, exams []ExamRecord) error {
	if err := os.MkdirAll(layout.CourseDir(courseID), 0755); err != nil {
		return fmt.Errorf("failed to create course directory: %w", err)
	}
	_, err := writeJSON(layout.ExamsPath(courseID), exams)
	return err
}

// LoadExams reads back EXAMS.json of a course.
func LoadExams(layout Layout, courseID int) ([]ExamRecord, error) {
	var exams []ExamRecord
	if err := readJSON(layout.ExamsPath(courseID), &exams); err != nil {
		return nil, err
	}
	return exams, nil
}
