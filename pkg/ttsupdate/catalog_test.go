package ttsupdate

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMinimizeSortsByAcronym(t *testing.T) {
	full := rawEntries(t, `[{"course_id":1,"acronym":"B"},{"course_id":2,"acronym":"A"}]`)

	mini, err := Minimize(full)
	require.NoError(t, err)
	require.Equal(t, []CourseEntry{
		{CourseID: 2, Acronym: "A"},
		{CourseID: 1, Acronym: "B"},
	}, mini)

	encoded, err := json.Marshal(mini)
	require.NoError(t, err)
	require.JSONEq(t, `[{"course_id":2,"acronym":"A"},{"course_id":1,"acronym":"B"}]`, string(encoded))
}

func TestMinimizeDropsExtraFieldsAndDuplicates(t *testing.T) {
	full := rawEntries(t, `[
		{"course_id":22862,"acronym":"M.EIC","name":"Mestrado","year":2023},
		{"course_id":22841,"acronym":"L.EIC","name":"Licenciatura","url":"https://x"},
		{"course_id":22862,"acronym":"M.EIC (dup)"},
		{"course_id":9,"acronym":"l.low"}
	]`)

	mini, err := Minimize(full)
	require.NoError(t, err)
	require.Equal(t, []CourseEntry{
		{CourseID: 22841, Acronym: "L.EIC"},
		{CourseID: 22862, Acronym: "M.EIC"},
		{CourseID: 9, Acronym: "l.low"},
	}, mini)

	// the input is left untouched
	require.JSONEq(t, `{"course_id":22862,"acronym":"M.EIC","name":"Mestrado","year":2023}`, string(full[0]))
}

func TestMinimizeRejectsMalformedEntries(t *testing.T) {
	testCases := []string{
		`[{"acronym":"X"}]`,
		`[{"course_id":1}]`,
		`[{"course_id":"1","acronym":"X"}]`,
		`[{"course_id":1.5,"acronym":"X"}]`,
		`[3]`,
	}
	for _, raw := range testCases {
		_, err := Minimize(rawEntries(t, raw))
		require.ErrorIs(t, err, ErrMalformedCourse, raw)
	}
}

func TestBuildIndex(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	source := &fakeCatalog{entries: rawEntries(t, `[
		{"course_id":22862,"acronym":"M.EIC","name":"Mestrado em Engenharia Informática e Computação"},
		{"course_id":22841,"acronym":"L.EIC","name":"Licenciatura em Engenharia Informática e Computação"}
	]`)}

	index, err := BuildIndex(context.Background(), source, "https://example/courses", layout, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, 1, source.calls)

	fullInfo, err := os.Stat(layout.CoursesPath())
	require.NoError(t, err)
	miniInfo, err := os.Stat(layout.MiniCoursesPath())
	require.NoError(t, err)
	require.Equal(t, int64(index.Sizes.FullBytes), fullInfo.Size())
	require.Equal(t, int64(index.Sizes.MiniBytes), miniInfo.Size())
	require.Less(t, miniInfo.Size(), fullInfo.Size())
	require.Greater(t, index.Sizes.Reduction(), 0.0)

	var full []map[string]any
	data, err := os.ReadFile(layout.CoursesPath())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &full))
	require.Len(t, full, 2)
	require.Equal(t, "M.EIC", full[0]["acronym"])

	mini, err := LoadIndex(layout)
	require.NoError(t, err)
	require.Equal(t, index.Mini, mini)
	require.Equal(t, "L.EIC", mini[0].Acronym)
}

func TestBuildIndexWithoutExtraFields(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	source := &fakeCatalog{entries: rawEntries(t, `[{"course_id":1,"acronym":"A"}]`)}

	index, err := BuildIndex(context.Background(), source, "", layout, zerolog.Nop())
	require.NoError(t, err)
	require.LessOrEqual(t, index.Sizes.MiniBytes, index.Sizes.FullBytes)
}

func TestBuildIndexFetchFailureWritesNothing(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	source := &fakeCatalog{err: errors.New("connection refused")}

	_, err := BuildIndex(context.Background(), source, "https://example/courses", layout, zerolog.Nop())
	require.ErrorContains(t, err, "connection refused")

	_, err = os.Stat(layout.CoursesPath())
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(layout.MiniCoursesPath())
	require.True(t, os.IsNotExist(err))
}

func TestBuildIndexMalformedWritesNothing(t *testing.T) {
	layout := Layout{Root: t.TempDir()}
	source := &fakeCatalog{entries: rawEntries(t, `[{"course_id":1}]`)}

	_, err := BuildIndex(context.Background(), source, "", layout, zerolog.Nop())
	require.ErrorIs(t, err, ErrMalformedCourse)

	_, err = os.Stat(layout.CoursesPath())
	require.True(t, os.IsNotExist(err))
}

func TestBuildIndexEmptyCatalog(t *testing.T) {
	layout := Layout{Root: t.TempDir()}

	_, err := BuildIndex(context.Background(), &fakeCatalog{}, "", layout, zerolog.Nop())
	require.NoError(t, err)

	data, err := os.ReadFile(layout.MiniCoursesPath())
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))
}

func TestLoadIndexMissing(t *testing.T) {
	_, err := LoadIndex(Layout{Root: t.TempDir()})
	require.ErrorIs(t, err, ErrCatalogMissing)
}
