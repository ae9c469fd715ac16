package reporting

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"pnmptrace/internal/analysis"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"clock": func(t time.Time) string { return t.UTC().Format("15:04:05") },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>pnmptrace Session Report - {{.Stamp}}</title>
    <style>
        body { font-family: sans-serif; margin: 20px; color: #333; }
        h1, h2 { color: #2c3e50; }
        table { width: 100%; border-collapse: collapse; margin-bottom: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        .summary { background: #eef; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
        .alert { color: #d9534f; font-weight: bold; }
    </style>
</head>
<body>
    <h1>pnmptrace Session Report</h1>
    <div class="summary">
        <p><strong>Date:</strong> {{.Date}}</p>
        <p><strong>Duration:</strong> {{.Duration}}</p>
        <p><strong>Reports traced:</strong> {{.Totals.Seen}} ({{.Totals.Displayed}} displayed, {{.Totals.Filtered}} filtered)</p>
        <p><strong>Reports dropped:</strong> {{.Totals.Dropped}} incomplete, {{.Totals.Ignored}} other kinds, {{.Totals.Discarded}} oversized</p>
    </div>
{{range .Tables}}
    <h2>{{.Title}}</h2>
    <table>
        <thead>
            <tr><th>{{.Column}}</th><th>Reports</th></tr>
        </thead>
        <tbody>
{{- range .Rows}}
            <tr><td>{{.Name}}</td><td>{{.Count}}</td></tr>
{{- else}}
            <tr><td colspan="2">None.</td></tr>
{{- end}}
        </tbody>
    </table>
{{end}}
    <h2>Alerts</h2>
    <table>
        <thead>
            <tr><th>Time</th><th>Type</th><th>Source</th><th>Message</th></tr>
        </thead>
        <tbody>
{{- range .Alerts}}
            <tr><td>{{clock .Timestamp}}</td><td class="alert">{{.Type}}</td><td>{{.Source}}</td><td>{{.Message}}</td></tr>
{{- else}}
            <tr><td colspan="4">No alerts triggered during this session.</td></tr>
{{- end}}
        </tbody>
    </table>
</body>
</html>
`))

type countTable struct {
	Title  string
	Column string
	Rows   []analysis.CountStat
}

type reportData struct {
	Stamp    string
	Date     string
	Duration time.Duration
	Totals   analysis.Totals
	Tables   []countTable
	Alerts   []analysis.Alert
}

// WriteSessionReport renders the session statistics as HTML.
func WriteSessionReport(w io.Writer, stats *analysis.TraceStats, now time.Time) error {
	data := reportData{
		Stamp:    now.Format("20060102_150405"),
		Date:     now.Format(time.RFC1123),
		Duration: now.Sub(stats.Started()).Round(time.Second),
		Totals:   stats.Totals(),
		Tables: []countTable{
			{"Top 10 Reporters", "Reporter", stats.GetTopReporters(10)},
			{"Frame Types", "Frame type", stats.GetFrameTypeStats()},
			{"Layer 3 Protocols", "Protocol", stats.GetProtocolStats()},
			{"Filtered Reports", "Rejected by", stats.GetFilterStats()},
		},
		Alerts: stats.GetAllAlerts(),
	}
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// GenerateSessionReport writes the report to path. An empty path picks
// a time-stamped name in the working directory. It returns the name
// written.
func GenerateSessionReport(stats *analysis.TraceStats, path string) (string, error) {
	now := time.Now()
	if path == "" {
		path = fmt.Sprintf("report_%s.html", now.Format("20060102_150405"))
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer file.Close()

	if err := WriteSessionReport(file, stats, now); err != nil {
		return "", err
	}
	return path, file.Close()
}
