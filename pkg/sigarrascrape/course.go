package sigarrascrape

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Course is a degree programme as shown on its SIGARRA course page. It is the
// shape courses.json takes when the catalog is scraped from HTML.
type Course struct {
	CourseID int    `json:"course_id"`
	Acronym  string `json:"acronym"`
	Name     string `json:"name,omitempty"`
	URL      string `json:"url,omitempty"`
	PlanURL  string `json:"plan_url,omitempty"`
}

var ErrNoAcronym = errors.New("course page has no acronym")

var acronymLabels = map[string]bool{
	"sigla:":   true,
	"acronym:": true,
}

// ScrapeCourse reads a course page. pageURL is the address the page was
// loaded from and is used to resolve the study plan link.
func ScrapeCourse(courseID int, pageURL *url.URL, reader io.Reader) (*Course, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse course page: %w", err)
	}

	course := &Course{
		CourseID: courseID,
		URL:      pageURL.String(),
	}

	title := doc.Find("#conteudoinner h1").First()
	if title.Length() == 0 {
		title = doc.Find("h1").First()
	}
	course.Name = collapseSpaces(title.Text())

	doc.Find("td").EachWithBreak(func(i int, s *goquery.Selection) bool {
		label := strings.ToLower(strings.TrimSpace(s.Text()))
		if !acronymLabels[label] {
			return true
		}
		course.Acronym = strings.TrimSpace(s.Next().Text())
		return false
	})
	if course.Acronym == "" {
		return nil, fmt.Errorf("course %d: %w", courseID, ErrNoAcronym)
	}

	if href, ok := doc.Find(`a[href*="cur_planos_estudos_view"]`).First().Attr("href"); ok {
		link, err := pageURL.Parse(href)
		if err != nil {
			return nil, fmt.Errorf("course %d: invalid study plan link %q: %w", courseID, href, err)
		}
		course.PlanURL = link.String()
	}

	return course, nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
