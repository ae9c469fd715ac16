package trace

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnmptrace/internal/analysis"
	"pnmptrace/internal/config"
	"pnmptrace/internal/output"
)

const scenario1 = `{"@type":"L2Trace","reportFrom":"G8PZT","port":"1","srce":"M0ABC","dest":"M0XYZ","l2Type":"UI","time":1761310012}`

type session struct {
	screen  bytes.Buffer
	capture bytes.Buffer
	stats   *analysis.TraceStats
	tracer  *Tracer
}

func newSession(cfg config.Config) *session {
	s := &session{stats: analysis.NewTraceStats()}
	out := output.New(&s.screen, &s.capture, cfg.Display)
	s.tracer = New(cfg, out, s.stats)
	s.tracer.now = func() time.Time { return time.Date(2025, 10, 24, 8, 0, 0, 0, time.UTC) }
	return s
}

func plainConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Display.Color = false
	return cfg
}

func run(t *testing.T, s *session, input string) {
	t.Helper()
	require.NoError(t, s.tracer.Run(context.Background(), strings.NewReader(input)))
}

func TestTraceScenarioUIFrame(t *testing.T) {
	s := newSession(plainConfig())
	run(t, s, scenario1)

	assert.Equal(t, "\n12:46:52 G8PZT(1)  M0ABC>M0XYZ<UI>\n", s.screen.String())
	assert.Equal(t, s.screen.String(), s.capture.String())
}

func TestTraceHiddenUIFrames(t *testing.T) {
	cfg := plainConfig()
	cfg.Display.ShowUI = false
	s := newSession(cfg)
	run(t, s, scenario1)

	assert.Empty(t, s.screen.String())
	assert.Equal(t, int64(1), s.stats.Totals().Filtered)
}

func TestTraceStream(t *testing.T) {
	cfg := plainConfig()
	cfg.Display.BlankLine = false
	cfg.Display.Timestamp = false
	s := newSession(cfg)

	input := `junk {"@type":"NodeStatus","reportFrom":"G8PZT"}` +
		`{"@type":"L2Trace","reportFrom":"G8PZT","port":"2","srce":"M0ABC","dest":"M0XYZ","l2Type":"I","dirn":"sent","ptcl":"DATA","icrc":"BEEF"}` + "\n" +
		`{"@type":"L2Trace","reportFrom":"G8PZT","srce":"M0ABC"}` +
		`{"@type":"L2Trace","reportFrom":"GB7BDH","port":"1","srce":"M0XYZ","dest":"M0ABC","l2Type":"RR","dirn":"rcvd","rseq":4}` +
		`{"@type":"L2Trace","reportFrom":"GB7BDH","port":"1","srce":"M0XYZ","dest":"M0ABC","l2Type":"UI","dirn":"rcvd","ptcl":"DATA","info":"hello"}`
	run(t, s, input)

	assert.Equal(t, "G8PZT(2)S M0ABC>M0XYZ<I> DATA CRC=BEEF\n"+
		"GB7BDH(1)R M0XYZ>M0ABC<RR R4>\n"+
		"GB7BDH(1)R M0XYZ>M0ABC<UI> DATA:\n    hello\n", s.screen.String())

	assert.Equal(t, analysis.Totals{Seen: 3, Displayed: 3, Dropped: 1, Ignored: 1}, s.stats.Totals())
}

func TestTraceRecordWarningsStayOffCapture(t *testing.T) {
	cfg := plainConfig()
	cfg.Display.Warnings = true
	s := newSession(cfg)

	run(t, s, `{"reportFrom":"G8PZT"}{"@type":"L2Trace","reportFrom":"G8PZT"}`)

	assert.Equal(t, "[missing '@type']\n[Mandatory field missing]\n", s.screen.String())
	assert.Empty(t, s.capture.String())
	assert.Equal(t, int64(2), s.stats.Totals().Dropped)
}

func TestTraceQuietWritesCaptureOnly(t *testing.T) {
	cfg := plainConfig()
	cfg.Display.Quiet = true
	cfg.CaptureFile = "trace.log"
	s := newSession(cfg)

	run(t, s, scenario1)

	assert.Empty(t, s.screen.String())
	assert.Equal(t, "\n12:46:52 G8PZT(1)  M0ABC>M0XYZ<UI>\n", s.capture.String())
}

func TestTraceQuietStillWarns(t *testing.T) {
	cfg := plainConfig()
	cfg.Display.Quiet = true
	cfg.Display.Warnings = true
	cfg.CaptureFile = "trace.log"
	s := newSession(cfg)

	run(t, s, `{"@type":"L2Trace","reportFrom":"G8PZT"}`+scenario1)

	assert.Equal(t, "[Mandatory field missing]\n", s.screen.String())
	assert.Equal(t, "\n12:46:52 G8PZT(1)  M0ABC>M0XYZ<UI>\n", s.capture.String())
}

func TestTraceRawJSONAndMissingTime(t *testing.T) {
	cfg := plainConfig()
	cfg.Display.RawJSON = true
	cfg.Display.BlankLine = false
	s := newSession(cfg)

	in := `{"@type":"L2Trace","reportFrom":"G8PZT","port":"1","srce":"A","dest":"B","l2Type":"DM"}`
	run(t, s, in)

	assert.Equal(t, in+"\n08:00:00 G8PZT(1)  A>B<DM>\n", s.screen.String())
}

func TestTraceFilters(t *testing.T) {
	cfg := plainConfig()
	cfg.Display.BlankLine = false
	cfg.Display.Timestamp = false
	cfg.Filter.Reporter = "gb7bdh"
	s := newSession(cfg)

	run(t, s, scenario1+`{"@type":"L2Trace","reportFrom":"GB7BDH","port":"1","srce":"A","dest":"B","l2Type":"UA"}`)

	assert.Equal(t, "GB7BDH(1)  A>B<UA>\n", s.screen.String())
	assert.Equal(t, []analysis.CountStat{{Name: "reporter", Count: 1}}, s.stats.GetFilterStats())
}

func TestTraceRunStopsWhenCancelled(t *testing.T) {
	s := newSession(plainConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.tracer.Run(ctx, strings.NewReader(scenario1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.screen.String())
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestTraceRunStopsOnSinkError(t *testing.T) {
	cfg := plainConfig()
	stats := analysis.NewTraceStats()
	tr := New(cfg, output.New(nil, brokenWriter{}, cfg.Display), stats)

	err := tr.Run(context.Background(), strings.NewReader(scenario1+scenario1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, int64(1), stats.Totals().Seen)
}
