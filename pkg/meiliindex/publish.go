package meiliindex

import (
	"context"
	"fmt"
	"time"

	"github.com/lukasmoellerch/tts-data-go/pkg/ttsupdate"
	"github.com/meilisearch/meilisearch-go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	CoursesIndex = "courses"
	UnitsIndex   = "curricular_units"

	defaultChunkSize = 128
)

type Options struct {
	Host   string
	APIKey string
	// IndexPrefix is prepended to both index names.
	IndexPrefix string
	ChunkSize   int
	// PollInterval between task status checks, 50ms when zero.
	PollInterval time.Duration
	Log          zerolog.Logger
}

type Result struct {
	Courses int
	Units   int
}

type indexTarget struct {
	name       string
	docs       []Document
	searchable *[]string
	filterable *[]string
}

// Publish replaces the contents of the courses and curricular units indexes
// with the data stored under layout. Both indexes are filled concurrently.
func Publish(ctx context.Context, options Options, layout ttsupdate.Layout) (*Result, error) {
	courses, err := LoadCourses(layout)
	if err != nil {
		return nil, err
	}

	courseDocs := make([]Document, 0, len(courses))
	var unitDocs []Document
	for _, course := range courses {
		courseDocs = append(courseDocs, CourseDocument(course))
		unitDocs = append(unitDocs, UnitDocuments(course)...)
	}

	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   options.Host,
		APIKey: options.APIKey,
	})

	p := &publisher{client: client, options: options}
	if p.options.ChunkSize <= 0 {
		p.options.ChunkSize = defaultChunkSize
	}
	if p.options.PollInterval <= 0 {
		p.options.PollInterval = 50 * time.Millisecond
	}

	targets := []indexTarget{
		{
			name:       options.IndexPrefix + CoursesIndex,
			docs:       courseDocs,
			searchable: coursesSearchableAttributes(),
			filterable: coursesFilterableAttributes(),
		},
		{
			name:       options.IndexPrefix + UnitsIndex,
			docs:       unitDocs,
			searchable: unitsSearchableAttributes(),
			filterable: unitsFilterableAttributes(),
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		g.Go(func() error {
			return p.replace(gctx, target)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{Courses: len(courseDocs), Units: len(unitDocs)}, nil
}

type publisher struct {
	client  *meilisearch.Client
	options Options
}

func (p *publisher) replace(ctx context.Context, target indexTarget) error {
	log := p.options.Log.With().Str("index", target.name).Logger()
	log.Info().Int("documents", len(target.docs)).Msg("publishing index")

	index := p.client.Index(target.name)

	deleteTask, err := index.DeleteAllDocuments()
	if err != nil {
		log.Warn().Err(err).Msg("delete failed, probably because the index doesn't exist")
	} else if err := p.wait(ctx, index, deleteTask.TaskUID); err != nil {
		log.Warn().Err(err).Msg("delete failed, probably because the index doesn't exist")
	}

	searchableTask, err := index.UpdateSearchableAttributes(target.searchable)
	if err != nil {
		return fmt.Errorf("%s: failed to update searchable attributes: %w", target.name, err)
	}
	if err := p.wait(ctx, index, searchableTask.TaskUID); err != nil {
		return fmt.Errorf("%s: failed to update searchable attributes: %w", target.name, err)
	}

	filterableTask, err := index.UpdateFilterableAttributes(target.filterable)
	if err != nil {
		return fmt.Errorf("%s: failed to update filterable attributes: %w", target.name, err)
	}
	if err := p.wait(ctx, index, filterableTask.TaskUID); err != nil {
		return fmt.Errorf("%s: failed to update filterable attributes: %w", target.name, err)
	}

	var tasks []int64
	for _, docs := range chunk(target.docs, p.options.ChunkSize) {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Debug().Int("documents", len(docs)).Msg("adding chunk")
		task, err := index.AddDocuments(docs, "id")
		if err != nil {
			return fmt.Errorf("%s: failed to add documents: %w", target.name, err)
		}
		tasks = append(tasks, task.TaskUID)
	}

	log.Debug().Int("tasks", len(tasks)).Msg("waiting for updates")
	for _, uid := range tasks {
		if err := p.wait(ctx, index, uid); err != nil {
			return fmt.Errorf("%s: failed to add documents: %w", target.name, err)
		}
	}

	log.Info().Msg("index published")
	return nil
}

func (p *publisher) wait(ctx context.Context, index *meilisearch.Index, uid int64) error {
	task, err := index.WaitForTask(uid, meilisearch.WaitParams{
		Context:  ctx,
		Interval: p.options.PollInterval,
	})
	if err != nil {
		return err
	}
	if task.Status != meilisearch.TaskStatusSucceeded {
		return fmt.Errorf("task %d finished with status %s", uid, task.Status)
	}
	return nil
}
