package models

import "time"

// Field capacities, in bytes, for the values copied out of a report.
const (
	CallsignLen = 15
	PortLen     = 15
	FrameLen    = 7
	DirnLen     = 4
	RFLen       = 4
	ProtocolLen = 7
)

// TraceContext holds the top-level fields of one L2Trace report. It is
// built once per record and shared by the filter, header and decoders.
type TraceContext struct {
	Reporter string
	Port     string

	Source      string
	Destination string

	FrameType   FrameType
	FrameText   string
	Direction   Direction
	DirnText    string
	RF          RFState
	Protocol    Protocol
	ProtoText   string
	HasProtocol bool

	Timestamp time.Time
}
