package sigarrafetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lukasmoellerch/tts-data-go/pkg/sigarrascrape"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

const DefaultBaseURL = "https://sigarra.up.pt/feup/pt/"

const userAgent = "tts-data-go (+https://github.com/lukasmoellerch/tts-data-go)"

var tracer = otel.Tracer("tts-data.sigarrafetch")

type ClientOptions struct {
	// BaseURL is the faculty's SIGARRA root, e.g. https://sigarra.up.pt/feup/pt/
	BaseURL string
	// Timeout of a single request, 0 waits forever.
	Timeout   time.Duration
	UserAgent string
	Logger    zerolog.Logger
}

// Client talks to the catalog API and to SIGARRA. Course pages are cached for
// the lifetime of the client, everything else is fetched on every call.
type Client struct {
	rc      *resty.Client
	base    *url.URL
	log     zerolog.Logger
	courses map[int]*sigarrascrape.Course
}

func NewClient(options ClientOptions) (*Client, error) {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	agent := options.UserAgent
	if agent == "" {
		agent = userAgent
	}

	rc := resty.New().
		SetHeader("User-Agent", agent).
		SetTimeout(options.Timeout)
	instrumentClient(rc, options.Logger)

	return &Client{
		rc:      rc,
		base:    base,
		log:     options.Logger,
		courses: make(map[int]*sigarrascrape.Course),
	}, nil
}

func (c *Client) get(ctx context.Context, link string) (*resty.Response, error) {
	res, err := c.rc.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", link, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("unexpected status code %d when fetching %s", res.StatusCode(), link)
	}
	return res, nil
}

func (c *Client) resolve(path string) *url.URL {
	// path is always one of the relative references below, which parse
	link, err := c.base.Parse(path)
	if err != nil {
		panic(err)
	}
	return link
}

// CourseURL is the address of a course's SIGARRA page.
func (c *Client) CourseURL(courseID int) string {
	return c.resolve("cur_geral.cur_view?pv_curso_id=" + strconv.Itoa(courseID)).String()
}

func (c *Client) examsURL(courseID int) string {
	return c.resolve("exa_geral.mapa_de_exames?p_curso_id=" + strconv.Itoa(courseID)).String()
}

// FetchCatalog loads the course directory at link. A JSON array is returned
// entry by entry as sent. Anything else is treated as an HTML directory page
// whose course links are each resolved through LoadCourse.
func (c *Client) FetchCatalog(ctx context.Context, link string) ([]json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "FetchCatalog")
	defer span.End()

	res, err := c.get(ctx, link)
	if err != nil {
		return nil, err
	}

	body := res.Body()
	if isJSON(res.Header().Get("Content-Type"), body) {
		var entries []json.RawMessage
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode course list from %s: %w", link, err)
		}
		return entries, nil
	}

	ids, err := sigarrascrape.ScrapeCourseDirectory(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.log.Info().Int("courses", len(ids)).Str("url", link).Msg("scraped course directory")

	entries := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		course, err := c.LoadCourse(ctx, id)
		if err != nil {
			return nil, err
		}
		entry, err := json.Marshal(course)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func isJSON(contentType string, body []byte) bool {
	if strings.Contains(contentType, "json") {
		return true
	}
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// LoadCourse returns the course behind a course id, reading its page at most
// once per client.
func (c *Client) LoadCourse(ctx context.Context, courseID int) (*sigarrascrape.Course, error) {
	if course, ok := c.courses[courseID]; ok {
		return course, nil
	}
	course, err := c.fetchCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	c.courses[courseID] = course
	return course, nil
}

func (c *Client) fetchCourse(ctx context.Context, courseID int) (*sigarrascrape.Course, error) {
	link := c.resolve("cur_geral.cur_view?pv_curso_id=" + strconv.Itoa(courseID))
	res, err := c.get(ctx, link.String())
	if err != nil {
		return nil, err
	}
	return sigarrascrape.ScrapeCourse(courseID, link, bytes.NewReader(res.Body()))
}

// CurricularUnits lists the units of the course's current study plan.
func (c *Client) CurricularUnits(ctx context.Context, courseID int) ([]sigarrascrape.Unit, error) {
	ctx, span := tracer.Start(ctx, "CurricularUnits")
	defer span.End()

	course, err := c.LoadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.PlanURL == "" {
		return nil, fmt.Errorf("course %d (%s) does not link to a study plan", courseID, course.Acronym)
	}

	link, err := url.Parse(course.PlanURL)
	if err != nil {
		return nil, fmt.Errorf("course %d: invalid study plan url: %w", courseID, err)
	}
	res, err := c.get(ctx, course.PlanURL)
	if err != nil {
		return nil, err
	}
	units, err := sigarrascrape.ScrapeStudyPlan(link, bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("course %d: %w", courseID, err)
	}
	return units, nil
}

// Exams lists the scheduled exams of a course. The exam map is never cached.
func (c *Client) Exams(ctx context.Context, courseID int) ([]sigarrascrape.Exam, error) {
	ctx, span := tracer.Start(ctx, "Exams")
	defer span.End()

	link := c.examsURL(courseID)
	res, err := c.get(ctx, link)
	if err != nil {
		return nil, err
	}
	exams, err := sigarrascrape.ScrapeExams(bytes.NewReader(res.Body()), sigarrascrape.Location)
	if err != nil {
		return nil, fmt.Errorf("course %d: %w", courseID, err)
	}
	return exams, nil
}
