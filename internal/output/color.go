package output

import (
	"github.com/muesli/termenv"

	"pnmptrace/internal/models"
)

var (
	colorReset = sgr(termenv.ResetSeq)

	// Indexed by RF state, then direction.
	colorMatrix = map[models.RFState][3]string{
		models.RFTrue: {
			sgr(termenv.ANSIBrightRed.Sequence(false)),
			sgr(termenv.ANSIBrightGreen.Sequence(false)),
			sgr(termenv.ANSIBrightYellow.Sequence(false)),
		},
		models.RFFalse: {
			sgr(termenv.RGBColor("#ff9696").Sequence(false)),
			sgr(termenv.RGBColor("#32ff96").Sequence(false)),
			sgr(termenv.ANSIBrightBlue.Sequence(false)),
		},
	}
)

func sgr(seq string) string {
	return termenv.CSI + seq + "m"
}

// ColorFor picks the escape sequence for a frame: RF frames in bright
// red/green/yellow, internet frames in pink/sea-green/blue (sent,
// received, other), and the terminal default when RF is unknown.
func ColorFor(rf models.RFState, dir models.Direction) string {
	row, ok := colorMatrix[rf]
	if !ok {
		return colorReset
	}
	switch dir {
	case models.DirSent:
		return row[0]
	case models.DirReceived:
		return row[1]
	default:
		return row[2]
	}
}

// SetColor switches the screen color. The capture file gets the
// sequence only when color-to-file is enabled.
func (w *Writer) SetColor(seq string) {
	if w.capture != nil && w.display.ColorToFile {
		w.write(w.capture, seq)
	}
	if w.screen != nil {
		w.write(w.screen, seq)
	}
}
