package ttsupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/lukasmoellerch/tts-data-go/pkg/sigarrascrape"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	entries []json.RawMessage
	err     error
	calls   int
}

func (f *fakeCatalog) FetchCatalog(ctx context.Context, link string) ([]json.RawMessage, error) {
	f.calls++
	return f.entries, f.err
}

type fakeCourses struct {
	units map[int][]sigarrascrape.Unit
	exams map[int][]sigarrascrape.Exam
	fail  map[int]error
	calls int
}

func (f *fakeCourses) CourseURL(courseID int) string {
	return fmt.Sprintf("https://sigarra.example/cur_geral.cur_view?pv_curso_id=%d", courseID)
}

func (f *fakeCourses) CurricularUnits(ctx context.Context, courseID int) ([]sigarrascrape.Unit, error) {
	f.calls++
	if err := f.fail[courseID]; err != nil {
		return nil, err
	}
	return f.units[courseID], nil
}

func (f *fakeCourses) Exams(ctx context.Context, courseID int) ([]sigarrascrape.Exam, error) {
	f.calls++
	if err := f.fail[courseID]; err != nil {
		return nil, err
	}
	return f.exams[courseID], nil
}

func rawEntries(t testing.TB, raw string) []json.RawMessage {
	var entries []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	return entries
}

// makeProjectRoot lays out a website checkout and returns its root.
func makeProjectRoot(t testing.TB) string {
	root := t.TempDir()
	for _, dir := range []string{"css", "data"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, dir), 0755))
	}
	for _, file := range []string{"index.html", "main.js"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, file), nil, 0644))
	}
	return root
}
