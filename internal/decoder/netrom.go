package decoder

import (
	"pnmptrace/internal/output"
	"pnmptrace/internal/record"
)

type l3Type int

const (
	l3Unknown l3Type = iota
	l3NetRom
	l3RoutingInfo
	l3RoutingPoll
)

var l3Types = map[string]l3Type{
	"NetRom":       l3NetRom,
	"Routing info": l3RoutingInfo,
	"Routing poll": l3RoutingPoll,
}

func parseL3Type(s string) l3Type {
	if t, ok := l3Types[s]; ok {
		return t
	}
	return l3Unknown
}

const (
	l3CallLen       = 10
	l3TTLLen        = 8
	l3rttPayloadLen = 511

	// l3rttDest is the layer-3 destination of round-trip probes.
	l3rttDest = "L3RTT"
)

func (d *Decoder) netRom(f record.Fields) {
	if !d.display.NetRom {
		return
	}

	name, ok := f.Field("l3Type", 79)
	if !ok {
		d.warn("missing 'l3Type'")
		return
	}

	switch parseL3Type(name) {
	case l3NetRom:
		d.netRomL3(f)
	case l3RoutingInfo:
		d.routingInfo(f)
	case l3RoutingPoll:
		// Polls carry no body worth showing.
	case l3Unknown:
		d.warn("unknown 'l3Type': '%s'", name)
	}
}

func (d *Decoder) netRomL3(f record.Fields) {
	w := d.out

	if src, ok := f.Field("l3src", l3CallLen); ok {
		w.Printf("%sNTRM: %s", output.Margin, src)
	}
	dst, hasDst := d.optional(f, "l3dst", l3CallLen, " to %s")
	d.optional(f, "ttl", l3TTLLen, " ttl=%s")

	if hasDst && dst == l3rttDest {
		d.l3rtt(f)
		return
	}
	d.netRomL4(f)
}

func (d *Decoder) l3rtt(f record.Fields) {
	d.optional(f, "paylen", 8, " ilen=%s")
	if !d.display.L3RTT {
		return
	}
	if payload, ok := f.Field("payload", l3rttPayloadLen); ok {
		d.out.WriteString(":" + output.Margin + payload)
	}
}
