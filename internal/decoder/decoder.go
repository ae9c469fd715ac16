// Package decoder renders the body of an L2Trace report: the AX25
// header, then NetRom layers 3 and 4, L3RTT, routing broadcasts, IP or
// ARP depending on the protocol the frame carries.
package decoder

import (
	"fmt"
	"time"

	"pnmptrace/internal/config"
	"pnmptrace/internal/models"
	"pnmptrace/internal/output"
	"pnmptrace/internal/record"
)

// Decoder writes trace bodies to an output.Writer.
type Decoder struct {
	out     *output.Writer
	display config.DisplayConfig

	// loc is the zone INP3 epoch timestamps are shown in.
	loc *time.Location
}

// New returns a Decoder writing to out.
func New(out *output.Writer, display config.DisplayConfig) *Decoder {
	return &Decoder{out: out, display: display, loc: time.Local}
}

// Decode writes the body for one report whose context was extracted by
// Extract. The caller writes the header before and the line end after.
func (d *Decoder) Decode(f record.Fields, tc models.TraceContext) {
	w := d.out

	w.Printf("%s>%s<%s", tc.Source, tc.Destination, tc.FrameText)
	d.optional(f, "cr", 2, " %s")
	d.optional(f, "pf", 2, " %s")
	d.optional(f, "rseq", 3, " R%s")
	d.optional(f, "tseq", 3, " S%s")
	w.WriteString(">")

	d.optional(f, "ilen", 10, " ilen=%s")
	d.optional(f, "pid", 10, " pid=%s")

	if !tc.HasProtocol {
		return
	}
	w.WriteString(" " + tc.ProtoText)

	switch tc.Protocol {
	case models.ProtoNetRom:
		d.netRom(f)
	case models.ProtoData:
		d.data(f)
	case models.ProtoIP:
		d.ip(f)
	case models.ProtoARP:
		d.arp(f)
	case models.ProtoOther:
	}
}

func (d *Decoder) data(f record.Fields) {
	// "info" is only present on UI frames, "icrc" only on I frames.
	if info, ok := f.Field("info", 1023); ok {
		d.out.WriteString(":" + output.Margin + info)
		return
	}
	d.optional(f, "icrc", 8, " CRC=%s")
}

// optional writes the named field through format when it is present.
func (d *Decoder) optional(f record.Fields, name string, max int, format string) (string, bool) {
	v, ok := f.Field(name, max)
	if ok {
		d.out.Printf(format, v)
	}
	return v, ok
}

// warn writes an inline bracketed warning when warnings are enabled.
func (d *Decoder) warn(format string, args ...any) {
	if d.display.Warnings {
		d.out.WriteString(" [" + fmt.Sprintf(format, args...) + "]")
	}
}
