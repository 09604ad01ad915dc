package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lukasmoellerch/tts-data-go/pkg/ttsupdate"
)

func renderSummary(w io.Writer, report *ttsupdate.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("run " + report.RunID)
	t.AppendHeader(table.Row{"Step", "Course", "Acronym", "Status", "Files", "Error"})

	files := 0
	for _, result := range report.Results {
		t.AppendRow(table.Row{result.Step, result.CourseID, result.Acronym, result.Status, result.Files, result.Error})
		files += result.Files
	}
	t.AppendFooter(table.Row{"Total", "", "", fmt.Sprintf("%d failed", len(report.Failed())), files, ""})

	t.SetStyle(table.StyleRounded)
	t.Render()
}
