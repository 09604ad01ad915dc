package meiliindex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/lukasmoellerch/tts-data-go/pkg/ttsupdate"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeMeili struct {
	mu        sync.Mutex
	nextTask  int64
	documents map[string][]Document
	requests  []string
	// failing task ids are reported as failed
	failing      map[int64]bool
	failSettings bool
	missingIndex bool
}

func newFakeMeili(t *testing.T) (*fakeMeili, *httptest.Server) {
	fake := &fakeMeili{documents: make(map[string][]Document), failing: make(map[int64]bool)}
	server := httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(server.Close)
	return fake, server
}

func (f *fakeMeili) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/tasks/") {
		var uid int64
		fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/tasks/"), "%d", &uid)
		status := "succeeded"
		if f.failing[uid] {
			status = "failed"
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"uid":%d,"status":%q}`, uid, status)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "indexes" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	index := parts[1]

	switch {
	case r.Method == http.MethodDelete && parts[2] == "documents":
		if f.missingIndex {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message":"Index not found.","code":"index_not_found","type":"invalid_request","link":""}`)
			return
		}
		f.documents[index] = nil
	case parts[2] == "settings":
		if f.failSettings {
			f.failing[f.nextTask+1] = true
		}
	case r.Method == http.MethodPost && parts[2] == "documents":
		body, _ := io.ReadAll(r.Body)
		var docs []Document
		if err := json.Unmarshal(body, &docs); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.documents[index] = append(f.documents[index], docs...)
	}

	f.nextTask++
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintf(w, `{"taskUid":%d,"indexUid":%q,"status":"enqueued","type":"documentAdditionOrUpdate"}`, f.nextTask, index)
}

// count returns how many requests contain pattern, e.g. "POST /indexes/x/documents".
func (f *fakeMeili) count(pattern string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, request := range f.requests {
		if strings.Contains(request, pattern) {
			n++
		}
	}
	return n
}

func testOptions(server *httptest.Server) Options {
	return Options{
		Host:        server.URL,
		APIKey:      "MASTER_KEY",
		IndexPrefix: "test_",
		Log:         zerolog.Nop(),
	}
}

func TestPublish(t *testing.T) {
	fake, server := newFakeMeili(t)
	layout := writeLayout(t)

	options := testOptions(server)
	options.ChunkSize = 2
	result, err := Publish(context.Background(), options, layout)
	require.NoError(t, err)
	require.Equal(t, &Result{Courses: 2, Units: 3}, result)

	require.Len(t, fake.documents["test_courses"], 2)
	require.Len(t, fake.documents["test_curricular_units"], 3)

	// three unit documents in chunks of two
	require.Equal(t, 2, fake.count("POST /indexes/test_curricular_units/documents"))
	require.Equal(t, 1, fake.count("POST /indexes/test_courses/documents"))
	require.Equal(t, 1, fake.count("DELETE /indexes/test_courses/documents"))
	require.Equal(t, 2, fake.count(" /indexes/test_courses/settings/"))
}

func TestPublishWithoutExistingIndex(t *testing.T) {
	fake, server := newFakeMeili(t)
	fake.missingIndex = true

	_, err := Publish(context.Background(), testOptions(server), writeLayout(t))
	require.NoError(t, err)
	require.Len(t, fake.documents["test_courses"], 2)
}

func TestPublishFailedTask(t *testing.T) {
	fake, server := newFakeMeili(t)
	fake.failSettings = true

	_, err := Publish(context.Background(), testOptions(server), writeLayout(t))
	require.ErrorContains(t, err, "searchable attributes")
}

func TestPublishNeedsIndex(t *testing.T) {
	_, server := newFakeMeili(t)

	_, err := Publish(context.Background(), testOptions(server), ttsupdate.Layout{Root: t.TempDir()})
	require.ErrorIs(t, err, ttsupdate.ErrCatalogMissing)
}
