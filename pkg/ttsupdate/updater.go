package ttsupdate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("tts-data.ttsupdate")

// Steps selects which parts of the data are refreshed. The timestamp is
// always written when the selected steps succeed.
type Steps struct {
	Catalog bool
	Units   bool
	Exams   bool
}

type Updater struct {
	Catalog CatalogSource
	Courses CourseSource
	Layout  Layout

	CatalogURL string

	// ProjectRoot must contain every entry of ProjectEntries, nil means
	// DefaultProjectEntries.
	ProjectRoot    string
	ProjectEntries []string

	// ContinueOnError attempts every course of a batch and fails the batch at
	// the end. By default a batch stops at the first failing course.
	ContinueOnError bool

	Log zerolog.Logger
	Now func() time.Time
}

// Run executes the selected steps in order: catalog, units, exams and
// finally the timestamp. The returned report holds a result per course and
// step, also when err is not nil.
func (u *Updater) Run(ctx context.Context, steps Steps) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := u.Log.With().Str("run_id", report.RunID).Logger()

	entries := u.ProjectEntries
	if entries == nil {
		entries = DefaultProjectEntries
	}
	if err := CheckProjectRoot(u.ProjectRoot, entries); err != nil {
		return report, err
	}

	if steps.Catalog {
		if _, err := BuildIndex(ctx, u.Catalog, u.CatalogURL, u.Layout, log); err != nil {
			return report, err
		}
	}

	var batchErrs []error
	if steps.Units {
		courses, err := LoadIndex(u.Layout)
		if err != nil {
			return report, err
		}
		if err := u.UpdateUnits(ctx, courses, report); err != nil {
			if !u.ContinueOnError || !errors.Is(err, ErrBatchFailed) {
				return report, err
			}
			batchErrs = append(batchErrs, err)
		}
	}

	if steps.Exams {
		courses, err := LoadIndex(u.Layout)
		if err != nil {
			return report, err
		}
		if err := u.UpdateExams(ctx, courses, report); err != nil {
			if !u.ContinueOnError || !errors.Is(err, ErrBatchFailed) {
				return report, err
			}
			batchErrs = append(batchErrs, err)
		}
	}

	if len(batchErrs) > 0 {
		return report, errors.Join(batchErrs...)
	}

	now := time.Now
	if u.Now != nil {
		now = u.Now
	}
	log.Info().Str("path", u.Layout.TimestampPath()).Msg("update complete, saving timestamp")
	ts, err := WriteTimestamp(u.Layout.TimestampPath(), now())
	if err != nil {
		return report, err
	}
	log.Debug().Int64("timestamp", ts.Timestamp).Msg("timestamp saved")

	return report, nil
}

// UpdateUnits writes SEMESTER1.json and SEMESTER2.json for every course.
func (u *Updater) UpdateUnits(ctx context.Context, courses []CourseEntry, report *Report) error {
	return u.runBatch(ctx, StepUnits, courses, report, func(ctx context.Context, course CourseEntry, log zerolog.Logger) (int, error) {
		log.Info().Msg("getting curricular units")
		sem1, sem2, err := FetchUnits(ctx, u.Courses, course.CourseID)
		if err != nil {
			return 0, err
		}
		log.Info().Int("semester1", len(sem1)).Int("semester2", len(sem2)).Msg("curricular units found")

		log.Debug().
			Str("semester1", u.Layout.SemesterPath(course.CourseID, 1)).
			Str("semester2", u.Layout.SemesterPath(course.CourseID, 2)).
			Msg("creating curricular units files")
		if err := writeUnits(u.Layout, course.CourseID, sem1, sem2); err != nil {
			return 0, err
		}
		return 2, nil
	})
}

// UpdateExams writes EXAMS.json for every course.
func (u *Updater) UpdateExams(ctx context.Context, courses []CourseEntry, report *Report) error {
	return u.runBatch(ctx, StepExams, courses, report, func(ctx context.Context, course CourseEntry, log zerolog.Logger) (int, error) {
		exams, err := FetchExams(ctx, u.Courses, course.CourseID)
		if err != nil {
			return 0, err
		}
		log.Info().Int("exams", len(exams)).Msg("exams found")

		log.Debug().Str("path", u.Layout.ExamsPath(course.CourseID)).Msg("creating exams file")
		if err := writeExams(u.Layout, course.CourseID, exams); err != nil {
			return 0, err
		}
		return 1, nil
	})
}

type courseFunc func(ctx context.Context, course CourseEntry, log zerolog.Logger) (int, error)

func (u *Updater) runBatch(ctx context.Context, step Step, courses []CourseEntry, report *Report, fn courseFunc) error {
	log := u.Log.With().Str("run_id", report.RunID).Str("step", string(step)).Logger()
	log.Info().Int("courses", len(courses)).Msg("number of courses")

	var errs []error
	for i, course := range courses {
		if err := ctx.Err(); err != nil {
			return err
		}

		courseLog := log.With().Int("course_id", course.CourseID).Str("acronym", course.Acronym).Logger()
		courseLog.Info().Msgf("now processing %s (%d/%d)", course.Acronym, i+1, len(courses))
		courseLog.Debug().Str("url", u.Courses.CourseURL(course.CourseID)).Msg("course url")

		courseCtx, span := tracer.Start(ctx, string(step), trace.WithAttributes(
			attribute.Int("course_id", course.CourseID),
			attribute.String("acronym", course.Acronym),
		))
		files, err := fn(courseCtx, course, courseLog)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "course failed")
		}
		span.End()

		if err != nil {
			err = fmt.Errorf("%s: course %s (%d): %w", step, course.Acronym, course.CourseID, err)
			report.add(CourseResult{
				Step:     step,
				CourseID: course.CourseID,
				Acronym:  course.Acronym,
				Status:   StatusFailed,
				Error:    err.Error(),
				Err:      err,
			})
			if !u.ContinueOnError {
				return err
			}
			courseLog.Error().Err(err).Msg("course failed, continuing")
			errs = append(errs, err)
			continue
		}

		report.add(CourseResult{
			Step:     step,
			CourseID: course.CourseID,
			Acronym:  course.Acronym,
			Status:   StatusOK,
			Files:    files,
		})
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrBatchFailed, errors.Join(errs...))
	}
	return nil
}
