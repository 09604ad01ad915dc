package sigarrascrape

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	dateRegex     = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
	timeSpanRegex = regexp.MustCompile(`(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)
)

// Exam is one scheduled exam event from a course's exam map. Rooms is nil
// when the map does not list any.
type Exam struct {
	OccurrenceID int
	Start        time.Time
	Finish       time.Time
	Rooms        []string
}

// ScrapeExams reads an exam map page. Each table.dias holds one week: the
// header row carries a date per column and exams are td.exame cells below it.
// Times on the page are local to loc.
func ScrapeExams(reader io.Reader, loc *time.Location) ([]Exam, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse exam map: %w", err)
	}

	exams := make([]Exam, 0)

	var cellError error
	doc.Find("table.dias").EachWithBreak(func(i int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		dates := make([]string, 0)
		rows.First().ChildrenFiltered("th").Each(func(i int, th *goquery.Selection) {
			dates = append(dates, dateRegex.FindString(th.Text()))
		})

		rows.Slice(1, goquery.ToEnd).EachWithBreak(func(i int, row *goquery.Selection) bool {
			row.ChildrenFiltered("td").EachWithBreak(func(col int, cell *goquery.Selection) bool {
				if !cell.HasClass("exame") {
					return true
				}
				if col >= len(dates) || dates[col] == "" {
					cellError = fmt.Errorf("exam cell in column %d has no date heading", col)
					return false
				}
				exam, err := scrapeExamCell(cell, dates[col], loc)
				if err != nil {
					cellError = err
					return false
				}
				exams = append(exams, exam)
				return true
			})
			return cellError == nil
		})
		return cellError == nil
	})
	if cellError != nil {
		return nil, cellError
	}

	return exams, nil
}

func scrapeExamCell(cell *goquery.Selection, date string, loc *time.Location) (Exam, error) {
	var exam Exam

	href := cell.Find(`a[href*="pv_ocorrencia_id="]`).First().AttrOr("href", "")
	matches := occurrenceRegex.FindStringSubmatch(href)
	if len(matches) == 0 {
		return exam, fmt.Errorf("exam on %s does not link to a unit occurrence", date)
	}
	occurrenceID, err := strconv.Atoi(matches[1])
	if err != nil {
		return exam, fmt.Errorf("could not extract occurrence id from href: %s", href)
	}
	exam.OccurrenceID = occurrenceID

	span := timeSpanRegex.FindStringSubmatch(cell.Text())
	if len(span) == 0 {
		return exam, fmt.Errorf("exam %d on %s has no time span", occurrenceID, date)
	}
	exam.Start, err = time.ParseInLocation("2006-01-02 15:04", date+" "+padHour(span[1]), loc)
	if err != nil {
		return exam, fmt.Errorf("exam %d: invalid start: %w", occurrenceID, err)
	}
	exam.Finish, err = time.ParseInLocation("2006-01-02 15:04", date+" "+padHour(span[2]), loc)
	if err != nil {
		return exam, fmt.Errorf("exam %d: invalid finish: %w", occurrenceID, err)
	}

	cell.Find(`a[href*="instalacs_geral.espaco_view"]`).Each(func(i int, a *goquery.Selection) {
		room := strings.TrimSpace(a.Text())
		if room != "" {
			exam.Rooms = append(exam.Rooms, room)
		}
	})

	return exam, nil
}

// 9:00 -> 09:00
func padHour(clock string) string {
	if len(clock) == 4 {
		return "0" + clock
	}
	return clock
}
