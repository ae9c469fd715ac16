package analysis

import (
	"fmt"
	"sync"
	"time"

	"pnmptrace/internal/models"
)

// AnomalyType represents the type of anomaly detected.
type AnomalyType string

const (
	AnomalyBeaconFlood AnomalyType = "BEACON_FLOOD"
	AnomalyFrameReject AnomalyType = "FRAME_REJECT"
	AnomalyBusyPort    AnomalyType = "BUSY_PORT"
)

// Config holds configuration for the anomaly detector.
type Config struct {
	BeaconThreshold int           // UI frames per second from one station
	PortThreshold   int           // Frames per second on one reporter port
	RejectCooldown  time.Duration // Quiet period between FRMR alerts per link
	DataRetention   time.Duration // How long idle tracking data is kept
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BeaconThreshold: 10,
		PortThreshold:   50,
		RejectCooldown:  time.Minute,
		DataRetention:   5 * time.Minute,
	}
}

// Alert represents a suspicious pattern on the monitored network.
type Alert struct {
	Type      AnomalyType
	Source    string // callsign or reporter port
	Message   string
	Timestamp time.Time
}

// window counts events within one second.
type window struct {
	start time.Time
	count int
}

// hit counts one event at now and reports the total in the current
// second.
func (w *window) hit(now time.Time) int {
	if now.Sub(w.start) >= time.Second || now.Before(w.start) {
		w.start = now
		w.count = 0
	}
	w.count++
	return w.count
}

// AnomalyDetector watches the displayed reports for flooding and
// protocol errors. Windows are measured in report time, so a replayed
// trace gives the same alerts as the live one did.
type AnomalyDetector struct {
	mu sync.Mutex

	config Config

	beacons map[string]*window // UI source -> window
	ports   map[string]*window // "reporter/port" -> window
	rejects map[string]time.Time

	alerts    []Alert
	maxAlerts int

	lastCleanup time.Time
}

// NewAnomalyDetector creates a new anomaly detection engine.
func NewAnomalyDetector(cfg Config) *AnomalyDetector {
	return &AnomalyDetector{
		config:    cfg,
		beacons:   make(map[string]*window),
		ports:     make(map[string]*window),
		rejects:   make(map[string]time.Time),
		alerts:    make([]Alert, 0),
		maxAlerts: 20,
	}
}

// ProcessReport analyzes one displayed report.
func (ad *AnomalyDetector) ProcessReport(tc models.TraceContext) {
	ad.mu.Lock()
	defer ad.mu.Unlock()

	now := tc.Timestamp

	if now.Sub(ad.lastCleanup) > ad.config.DataRetention {
		ad.cleanup(now)
		ad.lastCleanup = now
	}

	ad.detectBeaconFlood(tc, now)
	ad.detectFrameReject(tc, now)
	ad.detectBusyPort(tc, now)
}

func (ad *AnomalyDetector) cleanup(now time.Time) {
	for key, last := range ad.rejects {
		if now.Sub(last) > ad.config.DataRetention {
			delete(ad.rejects, key)
		}
	}
	for _, m := range []map[string]*window{ad.beacons, ad.ports} {
		for key, w := range m {
			if now.Sub(w.start) > ad.config.DataRetention {
				delete(m, key)
			}
		}
	}
}

func (ad *AnomalyDetector) detectBeaconFlood(tc models.TraceContext, now time.Time) {
	if tc.FrameType != models.FrameUI {
		return
	}

	n := track(ad.beacons, tc.Source).hit(now)
	if n > ad.config.BeaconThreshold {
		ad.addAlert(Alert{
			Type:      AnomalyBeaconFlood,
			Source:    tc.Source,
			Message:   fmt.Sprintf("%s sent %d UI frames in 1 second", tc.Source, n),
			Timestamp: now,
		})
		delete(ad.beacons, tc.Source)
	}
}

func (ad *AnomalyDetector) detectFrameReject(tc models.TraceContext, now time.Time) {
	if tc.FrameType != models.FrameFRMR {
		return
	}

	// One alert per link and direction per cooldown period.
	key := tc.Source + ">" + tc.Destination
	if last, ok := ad.rejects[key]; ok && now.Sub(last) <= ad.config.RejectCooldown {
		return
	}
	ad.addAlert(Alert{
		Type:      AnomalyFrameReject,
		Source:    tc.Source,
		Message:   fmt.Sprintf("Frame reject from %s to %s on %s port %s", tc.Source, tc.Destination, tc.Reporter, tc.Port),
		Timestamp: now,
	})
	ad.rejects[key] = now
}

func (ad *AnomalyDetector) detectBusyPort(tc models.TraceContext, now time.Time) {
	key := tc.Reporter + "/" + tc.Port

	n := track(ad.ports, key).hit(now)
	if n > ad.config.PortThreshold {
		ad.addAlert(Alert{
			Type:      AnomalyBusyPort,
			Source:    key,
			Message:   fmt.Sprintf("%d frames in 1 second on %s port %s", n, tc.Reporter, tc.Port),
			Timestamp: now,
		})
		delete(ad.ports, key)
	}
}

func track(m map[string]*window, key string) *window {
	w, ok := m[key]
	if !ok {
		w = &window{}
		m[key] = w
	}
	return w
}

// addAlert adds an alert to the history (circular buffer).
func (ad *AnomalyDetector) addAlert(alert Alert) {
	ad.alerts = append(ad.alerts, alert)

	if len(ad.alerts) > ad.maxAlerts {
		ad.alerts = ad.alerts[len(ad.alerts)-ad.maxAlerts:]
	}
}

// GetRecentAlerts returns the most recent alerts, newest last.
func (ad *AnomalyDetector) GetRecentAlerts(limit int) []Alert {
	ad.mu.Lock()
	defer ad.mu.Unlock()

	start := 0
	if len(ad.alerts) > limit {
		start = len(ad.alerts) - limit
	}

	result := make([]Alert, len(ad.alerts)-start)
	copy(result, ad.alerts[start:])
	return result
}
