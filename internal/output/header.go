package output

import (
	"pnmptrace/internal/models"
	"pnmptrace/internal/record"
)

// Begin writes everything that precedes a trace body: color, raw JSON,
// the separating blank line, the timestamp and the reporter header.
func (w *Writer) Begin(tc models.TraceContext, raw record.Raw) {
	d := w.display

	if d.Color {
		w.SetColor(ColorFor(tc.RF, tc.Direction))
	}
	if d.RawJSON {
		w.WriteString(raw.JSON() + "\n")
	}
	if d.BlankLine {
		w.WriteString("\n")
	}
	if d.Timestamp {
		w.WriteString(tc.Timestamp.UTC().Format("15:04:05 "))
	}

	if !d.HeaderLine {
		w.Printf("%s(%s)%c ", tc.Reporter, tc.Port, models.Initial(tc.DirnText))
		return
	}

	w.Printf("%s port %s", tc.Reporter, tc.Port)
	switch tc.RF {
	case models.RFTrue:
		w.WriteString(" (RF)")
	case models.RFFalse:
		w.WriteString(" (Non-RF)")
	}
	if tc.DirnText != "" {
		w.WriteString(" " + tc.DirnText)
	}
	w.WriteString(":\n  ")
}

// End terminates the trace line.
func (w *Writer) End() {
	w.WriteString("\n")
}
