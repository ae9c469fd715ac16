package decoder

import (
	"pnmptrace/internal/output"
	"pnmptrace/internal/record"
)

type l4Type int

const (
	// l4Other is a type name this decoder has no layout for. It still
	// gets the circuit number and flags.
	l4Other l4Type = iota
	l4Unknown
	l4ProtExt
	l4IP
	l4NCMP
	l4NDP
	l4GNET
	l4NRRRequest
	l4NRRReply
	l4ConnReq
	l4ConnReqX
	l4ConnAck
	l4ConnNak
	l4DReq
	l4DAck
	l4Reset
	l4Info
	l4InfoAck
)

var l4Types = map[string]l4Type{
	"unknown":     l4Unknown,
	"PROT EXT":    l4ProtExt,
	"IP":          l4IP,
	"NCMP":        l4NCMP,
	"NDP":         l4NDP,
	"GNET":        l4GNET,
	"NRR Request": l4NRRRequest,
	"NRR Reply":   l4NRRReply,
	"CONN REQ":    l4ConnReq,
	"CONN_REQX":   l4ConnReqX,
	"CONN ACK":    l4ConnAck,
	"CONN NAK":    l4ConnNak,
	"DREQ":        l4DReq,
	"DACK":        l4DAck,
	"RSET":        l4Reset,
	"INFO":        l4Info,
	"INFO ACK":    l4InfoAck,
}

func parseL4Type(s string) l4Type {
	if t, ok := l4Types[s]; ok {
		return t
	}
	return l4Other
}

const (
	l4FieldLen   = 80
	l4ShortLen   = 8
	l4CallLen    = 9
	l4PayloadLen = 2047

	// userIndent puts the calling user of a connect request on its own
	// line, indented past the NTRM margin.
	userIndent = "\n          "
)

var l4Flags = []struct{ field, label string }{
	{"chokeFlag", " <CHOKE>"},
	{"nakFlag", " <NAK>"},
	{"moreFlag", " <MORE>"},
}

func (d *Decoder) netRomL4(f record.Fields) {
	if !d.display.L4 {
		return
	}

	name, ok := f.Field("l4type", 15)
	if !ok {
		d.warn("missing l4type")
		return
	}

	kind := parseL4Type(name)
	switch kind {
	case l4Unknown:
		d.warn("unknown l4type")
		return
	case l4ProtExt:
		d.out.Printf(" <%s>", name)
		d.optional(f, "l4Family", l4FieldLen, " pf=%s")
		d.optional(f, "l4Proto", l4FieldLen, " prot=%s")
	case l4IP, l4NCMP, l4NDP, l4GNET:
		d.out.Printf(" <%s>", name)
	case l4NRRRequest, l4NRRReply:
		d.out.Printf(" <%s>", name)
		d.optional(f, "nrrId", l4FieldLen, " id=%s")
		d.optional(f, "nrrRoute", l4PayloadLen, output.Margin+"Route: %s")
	default:
		d.circuit(f, kind, name)
	}

	// Flags are shown whenever present, whatever their value.
	for _, flag := range l4Flags {
		if _, ok := f.Field(flag.field, l4ShortLen); ok {
			d.out.WriteString(flag.label)
		}
	}
}

// circuit writes the connection-oriented layer-4 types, each preceded
// by the circuit number.
func (d *Decoder) circuit(f record.Fields, kind l4Type, name string) {
	w := d.out

	d.optional(f, "toCct", l4ShortLen, " cct=%s")

	switch kind {
	case l4ConnReq, l4ConnReqX:
		w.Printf(" <%s>", name)
		d.optional(f, "window", l4ShortLen, " w=%s")
		if _, ok := d.optional(f, "srcUser", l4CallLen, userIndent+"%s"); !ok {
			break
		}
		d.optional(f, "srcNode", l4CallLen, " at %s")
		d.optional(f, "service", l4ShortLen, " svc=%s")
		d.optional(f, "l4t1", l4ShortLen, " t/o=%s")
		d.optional(f, "bpqSpy", l4ShortLen, " bpqSpy=%s")
	case l4ConnAck:
		w.Printf(" <%s>", name)
		d.optional(f, "window", l4ShortLen, " w=%s")
		d.optional(f, "fromCct", l4ShortLen, " myCct=%s")
	case l4ConnNak, l4DReq, l4DAck:
		w.Printf(" <%s>", name)
	case l4Reset:
		w.Printf(" <%s>", name)
		d.optional(f, "fromCct", l4ShortLen, " myCct=%s")
	case l4Info:
		w.Printf(" <%s", name)
		d.optional(f, "txSeq", l4ShortLen, " S%s")
		d.optional(f, "rxSeq", l4ShortLen, " R%s")
		w.WriteString(">")
		d.optional(f, "paylen", l4ShortLen, " ilen=%s")
		if payload, ok := f.Field("payload", l4PayloadLen); ok {
			w.WriteString(":" + output.Margin + payload)
		}
	case l4InfoAck:
		w.Printf(" <%s", name)
		d.optional(f, "rxSeq", l4ShortLen, " R%s")
		w.WriteString(">")
	}
}
