// Package trace runs each framed report through extraction, filtering,
// header output and decoding.
package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"pnmptrace/internal/analysis"
	"pnmptrace/internal/config"
	"pnmptrace/internal/decoder"
	"pnmptrace/internal/filter"
	"pnmptrace/internal/framer"
	"pnmptrace/internal/output"
	"pnmptrace/internal/record"
)

// Tracer turns reports into trace lines. It is not safe for concurrent
// use; stats may be read from other goroutines.
type Tracer struct {
	display config.DisplayConfig
	filter  filter.Filter
	out     *output.Writer
	decoder *decoder.Decoder
	stats   *analysis.TraceStats

	now func() time.Time
}

// New returns a Tracer writing to out and counting into stats.
func New(cfg config.Config, out *output.Writer, stats *analysis.TraceStats) *Tracer {
	return &Tracer{
		display: cfg.Display,
		filter:  filter.New(cfg.Filter, cfg.Display.ShowUI),
		out:     out,
		decoder: decoder.New(out, cfg.Display),
		stats:   stats,
		now:     time.Now,
	}
}

// Process traces one report. Reports that are not L2Trace, lack a
// mandatory field or fail the filter produce no trace output.
func (t *Tracer) Process(raw record.Raw) {
	f := raw.View(t.display.LegacySearch)

	tc, err := decoder.Extract(f, t.now)
	switch {
	case errors.Is(err, decoder.ErrOtherKind):
		t.stats.RecordIgnored()
		return
	case errors.Is(err, decoder.ErrMissingKind):
		t.warn("[missing '@type']")
		t.stats.RecordDropped()
		return
	case err != nil:
		t.warn("[Mandatory field missing]")
		t.stats.RecordDropped()
		return
	}

	verdict := t.filter.Accept(tc)
	t.stats.ProcessReport(tc, verdict)
	if verdict != filter.Accepted {
		return
	}

	t.out.Begin(tc, raw)
	t.decoder.Decode(f, tc)
	t.out.End()
}

// Run traces every report in r until the input ends or ctx is done.
// It stops early on a read error or when a sink can't be written.
func (t *Tracer) Run(ctx context.Context, r io.Reader) error {
	fr := framer.New(r)
	defer func() {
		t.stats.SetDiscarded(fr.Discarded())
	}()

	for raw, err := range fr.Records() {
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		t.Process(raw)
		if err := t.out.Err(); err != nil {
			return err
		}
	}

	totals := t.stats.Totals()
	log.Debug().
		Int64("seen", totals.Seen).
		Int64("displayed", totals.Displayed).
		Int64("filtered", totals.Filtered).
		Int64("dropped", totals.Dropped).
		Int("discarded", fr.Discarded()).
		Msg("end of input")
	return nil
}

func (t *Tracer) warn(msg string) {
	if t.display.Warnings {
		t.out.Warn(msg)
	}
}
