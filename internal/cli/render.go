package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"preflight/internal/models"
)

// reportView is a readiness report labelled for display
type reportView struct {
	Aircraft string                 `json:"aircraft"`
	Pilot    string                 `json:"pilot,omitempty"`
	Verdict  string                 `json:"verdict"`
	Report   models.ReadinessReport `json:"report"`

	CommittedMinutes int `json:"committed_minutes,omitempty"`
}

func newReportView(aircraft, pilot string, report models.ReadinessReport) reportView {
	verdict := "GO"
	if !report.IsReady {
		verdict = "NO-GO"
	}
	if report.Errors == nil {
		report.Errors = []models.Finding{}
	}
	if report.Warnings == nil {
		report.Warnings = []models.Finding{}
	}
	return reportView{Aircraft: aircraft, Pilot: pilot, Verdict: verdict, Report: report}
}

func renderReport(w io.Writer, format string, view reportView) error {
	if format == "json" {
		return renderJSON(w, view)
	}

	subject := view.Aircraft
	if view.Pilot != "" {
		subject += " / " + view.Pilot
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", subject, view.Verdict)

	if len(view.Report.Errors) == 0 && len(view.Report.Warnings) == 0 {
		_, _ = fmt.Fprintln(w, "No findings")
	} else {
		rows := make([]table.Row, 0, len(view.Report.Errors)+len(view.Report.Warnings))
		for _, f := range view.Report.Errors {
			rows = append(rows, table.Row{"ERROR", f.Category, f.Message})
		}
		for _, f := range view.Report.Warnings {
			rows = append(rows, table.Row{"WARNING", f.Category, f.Message})
		}
		renderTable(w, table.Row{"Level", "Category", "Finding"}, rows)
	}

	if view.CommittedMinutes > 0 {
		_, _ = fmt.Fprintf(w, "Flight committed: %d min added to engine hours\n", view.CommittedMinutes)
	}
	return nil
}

// aircraftView is an aircraft list row with its fleet status
type aircraftView struct {
	*models.Aircraft
	Status string `json:"status"`
}

func renderTable(w io.Writer, header table.Row, rows []table.Row) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Render()
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
