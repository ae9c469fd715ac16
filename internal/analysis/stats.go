package analysis

import (
	"sort"
	"sync"
	"time"

	"pnmptrace/internal/filter"
	"pnmptrace/internal/models"
)

// CountStat is one row of a frequency table.
type CountStat struct {
	Name  string
	Count int64
}

// Totals summarises what happened to every record of the session.
type Totals struct {
	Seen      int64 // L2Trace reports with all mandatory fields
	Displayed int64
	Filtered  int64
	Dropped   int64 // missing '@type' or a mandatory field
	Ignored   int64 // other report kinds
	Discarded int64 // oversized objects skipped by the framer
}

// TraceEntry is a displayed report, kept for the dashboard.
type TraceEntry struct {
	Timestamp   time.Time
	Reporter    string
	Port        string
	Source      string
	Destination string
	FrameType   string
	Protocol    string
}

// TraceStats accumulates session counters. It is safe for concurrent
// use: the trace pipeline writes while the dashboard reads.
type TraceStats struct {
	mu            sync.Mutex
	started       time.Time
	totals        Totals
	windowRecords int64
	lastTick      time.Time

	filtered   map[filter.Verdict]int64
	reporters  map[string]int64
	frameTypes map[string]int64
	protocols  map[string]int64

	recent    []TraceEntry
	maxRecent int

	anomalyDetector *AnomalyDetector
}

// NewTraceStats creates an empty TraceStats.
func NewTraceStats() *TraceStats {
	now := time.Now()
	return &TraceStats{
		started:         now,
		lastTick:        now,
		filtered:        make(map[filter.Verdict]int64),
		reporters:       make(map[string]int64),
		frameTypes:      make(map[string]int64),
		protocols:       make(map[string]int64),
		maxRecent:       50,
		anomalyDetector: NewAnomalyDetector(DefaultConfig()),
	}
}

// ProcessReport counts one L2Trace report and the filter's verdict on it.
func (s *TraceStats) ProcessReport(tc models.TraceContext, v filter.Verdict) {
	s.mu.Lock()
	s.totals.Seen++
	s.windowRecords++
	s.reporters[tc.Reporter]++

	if v != filter.Accepted {
		s.totals.Filtered++
		s.filtered[v]++
		s.mu.Unlock()
		return
	}

	s.totals.Displayed++
	s.frameTypes[tc.FrameText]++

	proto := tc.ProtoText
	if !tc.HasProtocol {
		proto = "none"
	}
	s.protocols[proto]++

	s.recent = append(s.recent, TraceEntry{
		Timestamp:   tc.Timestamp,
		Reporter:    tc.Reporter,
		Port:        tc.Port,
		Source:      tc.Source,
		Destination: tc.Destination,
		FrameType:   tc.FrameText,
		Protocol:    tc.ProtoText,
	})
	if len(s.recent) > s.maxRecent {
		s.recent = s.recent[len(s.recent)-s.maxRecent:]
	}
	s.mu.Unlock()

	// The detector has its own mutex.
	s.anomalyDetector.ProcessReport(tc)
}

// RecordDropped counts a report rejected for a missing field.
func (s *TraceStats) RecordDropped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals.Dropped++
}

// RecordIgnored counts a report of a kind that is not traced.
func (s *TraceStats) RecordIgnored() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals.Ignored++
}

// SetDiscarded records the framer's count of oversized objects.
func (s *TraceStats) SetDiscarded(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals.Discarded = int64(n)
}

// Totals returns a snapshot of the session counters.
func (s *TraceStats) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// Started is when the session began.
func (s *TraceStats) Started() time.Time {
	return s.started
}

// GetRate returns the reports per second since the last call.
func (s *TraceStats) GetRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	duration := now.Sub(s.lastTick).Seconds()
	if duration == 0 {
		return 0
	}
	rate := float64(s.windowRecords) / duration

	s.windowRecords = 0
	s.lastTick = now
	return rate
}

// GetTopReporters returns the busiest reporting nodes, filtered reports
// included.
func (s *TraceStats) GetTopReporters(limit int) []CountStat {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := sortedCounts(s.reporters)
	if len(stats) > limit {
		return stats[:limit]
	}
	return stats
}

// GetFrameTypeStats returns displayed reports by AX25 frame type.
func (s *TraceStats) GetFrameTypeStats() []CountStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCounts(s.frameTypes)
}

// GetProtocolStats returns displayed reports by layer-3 protocol.
func (s *TraceStats) GetProtocolStats() []CountStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCounts(s.protocols)
}

// GetFilterStats returns filtered reports by the check that rejected
// them.
func (s *TraceStats) GetFilterStats() []CountStat {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName := make(map[string]int64, len(s.filtered))
	for v, n := range s.filtered {
		byName[v.String()] = n
	}
	return sortedCounts(byName)
}

// GetRecent returns the most recently displayed reports, oldest first.
func (s *TraceStats) GetRecent() []TraceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]TraceEntry, len(s.recent))
	copy(result, s.recent)
	return result
}

// GetAlerts returns the latest alerts for the dashboard.
func (s *TraceStats) GetAlerts() []Alert {
	return s.anomalyDetector.GetRecentAlerts(5)
}

// GetAllAlerts returns every retained alert.
func (s *TraceStats) GetAllAlerts() []Alert {
	return s.anomalyDetector.GetRecentAlerts(s.anomalyDetector.maxAlerts)
}

// sortedCounts orders by count, descending, then by name.
func sortedCounts(m map[string]int64) []CountStat {
	stats := make([]CountStat, 0, len(m))
	for name, count := range m {
		stats = append(stats, CountStat{Name: name, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Name < stats[j].Name
	})
	return stats
}
