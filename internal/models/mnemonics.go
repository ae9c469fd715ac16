package models

import "strings"

// FrameType is the AX25 frame type carried in "l2Type".
type FrameType int

const (
	FrameOther FrameType = iota
	FrameI
	FrameUI
	FrameRR
	FrameRNR
	FrameREJ
	FrameSREJ
	FrameSABM
	FrameSABME
	FrameDISC
	FrameDM
	FrameUA
	FrameFRMR
	FrameXID
	FrameTEST
)

var frameTypes = map[string]FrameType{
	"I":     FrameI,
	"UI":    FrameUI,
	"RR":    FrameRR,
	"RNR":   FrameRNR,
	"REJ":   FrameREJ,
	"SREJ":  FrameSREJ,
	"SABM":  FrameSABM,
	"SABME": FrameSABME,
	"DISC":  FrameDISC,
	"DM":    FrameDM,
	"UA":    FrameUA,
	"FRMR":  FrameFRMR,
	"XID":   FrameXID,
	"TEST":  FrameTEST,
}

// ParseFrameType maps a wire mnemonic to its FrameType. Matching is
// exact; anything else is FrameOther.
func ParseFrameType(s string) FrameType {
	if ft, ok := frameTypes[s]; ok {
		return ft
	}
	return FrameOther
}

// Protocol is the layer-3 protocol mnemonic carried in "ptcl".
type Protocol int

const (
	ProtoOther Protocol = iota
	ProtoNetRom
	ProtoData
	ProtoIP
	ProtoARP
)

var protocols = map[string]Protocol{
	"NET/ROM": ProtoNetRom,
	"DATA":    ProtoData,
	"IP":      ProtoIP,
	"ARP":     ProtoARP,
}

// ParseProtocol maps a wire mnemonic to its Protocol.
func ParseProtocol(s string) Protocol {
	if p, ok := protocols[s]; ok {
		return p
	}
	return ProtoOther
}

// Direction of the frame relative to the reporting node.
type Direction int

const (
	DirUnknown Direction = iota
	DirSent
	DirReceived
	DirOther
)

// ParseDirection classifies "dirn" by its first letter, as the
// producers abbreviate it inconsistently ("sent", "rcvd", "recv").
func ParseDirection(s string) Direction {
	switch {
	case s == "":
		return DirUnknown
	case s[0] == 's' || s[0] == 'S':
		return DirSent
	case s[0] == 'r' || s[0] == 'R':
		return DirReceived
	default:
		return DirOther
	}
}

// Initial is the upper-case first letter of the raw direction, or a
// space when there is none.
func Initial(dirn string) byte {
	if dirn == "" {
		return ' '
	}
	return strings.ToUpper(dirn[:1])[0]
}

// RFState says whether the frame was heard on RF or arrived over an
// internet link.
type RFState int

const (
	RFUnknown RFState = iota
	RFTrue
	RFFalse
)

// ParseRF classifies "isRF" by its first letter.
func ParseRF(s string) RFState {
	switch {
	case s == "":
		return RFUnknown
	case s[0] == 't' || s[0] == 'T':
		return RFTrue
	case s[0] == 'f' || s[0] == 'F':
		return RFFalse
	default:
		return RFUnknown
	}
}
