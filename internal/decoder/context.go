package decoder

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"pnmptrace/internal/models"
	"pnmptrace/internal/record"
)

var (
	ErrMissingKind      = errors.New("missing '@type'")
	ErrOtherKind        = errors.New("not an L2Trace report")
	ErrMissingMandatory = errors.New("mandatory field missing")
)

// Kind is the report type named by "@type".
type Kind int

const (
	KindOther Kind = iota
	KindL2Trace
)

var kinds = map[string]Kind{
	"L2Trace": KindL2Trace,
}

// ParseKind maps an "@type" value to its Kind.
func ParseKind(s string) Kind {
	if k, ok := kinds[s]; ok {
		return k
	}
	return KindOther
}

// Extract builds the TraceContext of an L2Trace report. Reports of
// other kinds return ErrOtherKind; reports lacking a mandatory field
// return ErrMissingMandatory. now supplies the timestamp for reports
// without a "time" field.
func Extract(f record.Fields, now func() time.Time) (models.TraceContext, error) {
	var tc models.TraceContext

	kind, ok := f.Field("@type", 80)
	if !ok {
		return tc, ErrMissingKind
	}
	if ParseKind(kind) != KindL2Trace {
		return tc, ErrOtherKind
	}

	var ok1, ok2, ok3, ok4, ok5 bool
	tc.Reporter, ok1 = f.Field("reportFrom", models.CallsignLen)
	tc.Port, ok2 = f.Field("port", models.PortLen)
	tc.Source, ok3 = f.Field("srce", models.CallsignLen)
	tc.Destination, ok4 = f.Field("dest", models.CallsignLen)
	tc.FrameText, ok5 = f.Field("l2Type", models.FrameLen)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return tc, ErrMissingMandatory
	}
	tc.FrameType = models.ParseFrameType(tc.FrameText)

	tc.DirnText, _ = f.Field("dirn", models.DirnLen)
	tc.Direction = models.ParseDirection(tc.DirnText)

	rf, _ := f.Field("isRF", models.RFLen)
	tc.RF = models.ParseRF(rf)

	tc.ProtoText, _ = f.Field("ptcl", models.ProtocolLen)
	tc.HasProtocol = tc.ProtoText != ""
	tc.Protocol = models.ParseProtocol(tc.ProtoText)

	tc.Timestamp = now()
	if v, ok := f.Field("time", 20); ok {
		if secs, ok := parseEpoch(v); ok {
			tc.Timestamp = time.Unix(secs, 0)
		}
	}
	return tc, nil
}

// parseEpoch reads whole seconds, ignoring any fractional part.
func parseEpoch(v string) (int64, bool) {
	if i := strings.IndexByte(v, '.'); i >= 0 {
		v = v[:i]
	}
	secs, err := strconv.ParseInt(v, 10, 64)
	return secs, err == nil
}
