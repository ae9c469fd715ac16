// Package filter decides whether a report is displayed.
package filter

import (
	"strconv"
	"strings"

	"pnmptrace/internal/config"
	"pnmptrace/internal/models"
)

// Verdict names the check that rejected a report, or Accepted.
type Verdict int

const (
	Accepted Verdict = iota
	RejectUI
	RejectReporter
	RejectPort
	RejectFrameType
	RejectSource
	RejectDestination
	RejectEither
	RejectProtocol
)

var verdictNames = [...]string{
	Accepted:          "accepted",
	RejectUI:          "ui-hidden",
	RejectReporter:    "reporter",
	RejectPort:        "port",
	RejectFrameType:   "frame-type",
	RejectSource:      "source",
	RejectDestination: "destination",
	RejectEither:      "either",
	RejectProtocol:    "protocol",
}

func (v Verdict) String() string {
	if int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return "unknown"
}

// Filter applies a FilterConfig plus the UI display toggle.
type Filter struct {
	cfg    config.FilterConfig
	showUI bool
}

// New returns a Filter for cfg. showUI false rejects every UI frame.
func New(cfg config.FilterConfig, showUI bool) Filter {
	return Filter{cfg: cfg, showUI: showUI}
}

// Accept runs the checks in order and returns the first failure.
func (f Filter) Accept(tc models.TraceContext) Verdict {
	c := f.cfg

	if tc.FrameType == models.FrameUI && !f.showUI {
		return RejectUI
	}
	if c.Reporter != "" && !strings.EqualFold(tc.Reporter, c.Reporter) {
		return RejectReporter
	}
	if c.Port != 0 {
		if port, err := strconv.Atoi(strings.TrimSpace(tc.Port)); err != nil || port != c.Port {
			return RejectPort
		}
	}
	if c.FrameType != "" && !strings.EqualFold(tc.FrameText, c.FrameType) {
		return RejectFrameType
	}
	if c.Source != "" && !strings.EqualFold(tc.Source, c.Source) {
		return RejectSource
	}
	if c.Destination != "" && !strings.EqualFold(tc.Destination, c.Destination) {
		return RejectDestination
	}
	if c.Either != "" && !strings.EqualFold(tc.Source, c.Either) && !strings.EqualFold(tc.Destination, c.Either) {
		return RejectEither
	}
	if c.Protocol != "" && (!tc.HasProtocol || !strings.EqualFold(tc.ProtoText, c.Protocol)) {
		return RejectProtocol
	}
	return Accepted
}
