package sigarrascrape

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// regex to extract ids from ucurr_geral.ficha_uc_view?pv_ocorrencia_id=520321
var occurrenceRegex = regexp.MustCompile(`pv_ocorrencia_id=(\d+)`)

var yearRegex = regexp.MustCompile(`(\d+)`)

// Unit is a curricular unit listed in a study plan. A unit offered in more
// than one curricular year is listed once, with every year it appears under.
type Unit struct {
	Acronym         string `json:"acronym"`
	CurricularYears []int  `json:"curricular_years"`
	Name            string `json:"name"`
	OccurrenceID    int    `json:"pv_ocorrencia_id"`
	Semester        string `json:"semester"`
	URL             string `json:"url"`
}

// ParseSemester maps a study plan period heading to "1", "2" or "A".
func ParseSemester(heading string) (string, error) {
	h := strings.ToLower(collapseSpaces(heading))
	switch {
	case strings.HasPrefix(h, "1º semestre"), strings.HasPrefix(h, "1st semester"), h == "1s":
		return "1", nil
	case strings.HasPrefix(h, "2º semestre"), strings.HasPrefix(h, "2nd semester"), h == "2s":
		return "2", nil
	case strings.HasPrefix(h, "anual"), strings.HasPrefix(h, "annual"), h == "a":
		return "A", nil
	}
	return "", fmt.Errorf("unknown study plan period %q", heading)
}

// ScrapeStudyPlan reads a study plan page. Inside #conteudoinner, years are
// h3 headings and periods are h4 headings. Units are rows of table.dadossz
// whose third cell links to the unit's occurrence.
func ScrapeStudyPlan(pageURL *url.URL, reader io.Reader) ([]Unit, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse study plan: %w", err)
	}

	units := make([]*Unit, 0)
	byOccurrence := make(map[int]*Unit)

	year := 0
	semester := ""

	var rowError error
	doc.Find("#conteudoinner").Find("h3, h4, table.dadossz tr").EachWithBreak(func(i int, s *goquery.Selection) bool {
		switch goquery.NodeName(s) {
		case "h3":
			matches := yearRegex.FindStringSubmatch(s.Text())
			if len(matches) == 0 {
				return true
			}
			year, _ = strconv.Atoi(matches[1])
			semester = ""
			return true
		case "h4":
			semester, rowError = ParseSemester(s.Text())
			return rowError == nil
		}

		cells := s.ChildrenFiltered("td")
		if cells.Length() < 3 {
			return true
		}
		link := cells.Eq(2).Find("a[href]").First()
		href := link.AttrOr("href", "")
		matches := occurrenceRegex.FindStringSubmatch(href)
		if len(matches) == 0 {
			return true
		}
		occurrenceID, err := strconv.Atoi(matches[1])
		if err != nil {
			rowError = fmt.Errorf("could not extract occurrence id from href: %s", href)
			return false
		}
		acronym := strings.TrimSpace(cells.Eq(1).Text())

		if year == 0 || semester == "" {
			rowError = fmt.Errorf("unit %s is listed outside a year and period heading", acronym)
			return false
		}

		if existing, ok := byOccurrence[occurrenceID]; ok {
			if !slices.Contains(existing.CurricularYears, year) {
				existing.CurricularYears = append(existing.CurricularYears, year)
			}
			return true
		}

		unitURL, err := pageURL.Parse(href)
		if err != nil {
			rowError = fmt.Errorf("invalid unit link %q: %w", href, err)
			return false
		}

		unit := &Unit{
			Acronym:         acronym,
			CurricularYears: []int{year},
			Name:            collapseSpaces(link.Text()),
			OccurrenceID:    occurrenceID,
			Semester:        semester,
			URL:             unitURL.String(),
		}
		byOccurrence[occurrenceID] = unit
		units = append(units, unit)
		return true
	})
	if rowError != nil {
		return nil, rowError
	}

	result := make([]Unit, len(units))
	for i, unit := range units {
		result[i] = *unit
	}
	return result, nil
}
