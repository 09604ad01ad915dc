package sigarrascrape

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// regex to extract ids from cur_geral.cur_view?pv_curso_id=22841&pv_ano_lectivo=2023
var courseLinkRegex = regexp.MustCompile(`cur_geral\.cur_view\?(?:.*&)?pv_curso_id=(\d+)`)

var doctoralRegex = regexp.MustCompile(`(?i)doutora|doctora`)

// The directory widget ends with a link to the faculty's external page which
// points at a course view as well.
var webPageRegex = regexp.MustCompile(`(?i)^(p[áa]gina web|web ?page)$`)

// ScrapeCourseDirectory returns the course ids linked from a course directory
// page, in page order and without duplicates.
func ScrapeCourseDirectory(reader io.Reader) ([]int, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse course directory: %w", err)
	}

	ids := make([]int, 0)
	seen := make(map[int]bool)

	var linkError error
	doc.Find("a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href := s.AttrOr("href", "")
		matches := courseLinkRegex.FindStringSubmatch(href)
		if len(matches) == 0 {
			return true
		}

		name := strings.TrimSpace(s.Text())
		title := s.AttrOr("title", "")
		if webPageRegex.MatchString(name) {
			return true
		}
		if doctoralRegex.MatchString(name) || doctoralRegex.MatchString(title) {
			return true
		}

		id, err := strconv.Atoi(matches[1])
		if err != nil {
			linkError = fmt.Errorf("could not extract course id from href: %s", href)
			return false
		}
		if seen[id] {
			return true
		}
		seen[id] = true
		ids = append(ids, id)
		return true
	})
	if linkError != nil {
		return nil, linkError
	}

	return ids, nil
}
