package decoder

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"pnmptrace/internal/output"
	"pnmptrace/internal/record"
)

type routingType int

const (
	routingUnknown routingType = iota
	routingNodes
	routingINP3
)

var routingTypes = map[string]routingType{
	"NODES": routingNodes,
	"INP3":  routingINP3,
}

func parseRoutingType(s string) routingType {
	if t, ok := routingTypes[s]; ok {
		return t
	}
	return routingUnknown
}

// minEpoch separates real Unix timestamps from small counters some
// nodes send in the INP3 timestamp field.
const minEpoch = 18000

// inp3Capabilities are the boolean INP3 fields shown as bare labels
// when their value is exactly "true".
var inp3Capabilities = []struct{ field, label string }{
	{"isNode", " NODE"},
	{"isBBS", " BBS"},
	{"isPMS", " PMS"},
	{"isXRChat", " XRCHAT"},
	{"isRTChat", " RTCHAT"},
	{"isRMS", " RMS"},
	{"isDXClus", " DXCLUS"},
}

func (d *Decoder) routingInfo(f record.Fields) {
	name, ok := f.Field("type", 15)
	if !ok {
		d.warn("missing 'type'")
		return
	}

	switch parseRoutingType(name) {
	case routingNodes:
		d.nodes(f)
	case routingINP3:
		d.inp3(f)
	case routingUnknown:
		d.warn("unknown 'type' '%s'", name)
	}
}

func (d *Decoder) nodes(f record.Fields) {
	w := d.out

	if !d.display.Nodes {
		w.WriteString(" NODES Broadcast")
		return
	}

	alias, ok := f.Field("fromAlias", 6)
	if !ok {
		d.warn("missing 'fromAlias'")
		return
	}
	w.Printf("%sNODES Broadcast from %s:", output.Margin, alias)

	// The legacy search has to start after the alias, or it would
	// find the "NODES" type value instead of the array.
	routes, ok := f.After("fromAlias").Elements("nodes")
	if !ok {
		d.warn("missing 'nodes' array")
		return
	}

	for _, route := range routes {
		d.optional(route, "call", 9, output.Margin+"%s")
		d.optional(route, "alias", 6, ":%s")
		d.optional(route, "via", 9, " via %s")
		d.optional(route, "qual", 3, " qlty=%s")
	}
}

func (d *Decoder) inp3(f record.Fields) {
	w := d.out

	if !d.display.INP3 {
		w.WriteString(" INP3")
		return
	}

	w.Printf("%sINP3 Routing Unicast:", output.Margin)

	routes, ok := f.Elements("nodes")
	if !ok {
		d.warn("missing 'nodes' array")
		return
	}
	for _, route := range routes {
		d.inp3Route(route)
	}
}

// inp3Route writes one route on its own line. Everything after the
// callsign is width-checked and wraps to an indented continuation.
func (d *Decoder) inp3Route(f record.Fields) {
	w := d.out

	d.optional(f, "call", 9, output.Margin+"%-9s")
	d.fitted(f, "hops", 2, "  hp=%-2s")
	d.fitted(f, "tt", 5, "  tt=%-5s")
	d.fitted(f, "alias", 6, "  Alias=%-6s")
	d.fitted(f, "latitude", 20, " %s")
	d.fitted(f, "longitude", 20, " %s")
	d.fitted(f, "software", 20, " S/W=%s")
	d.fitted(f, "version", 10, " v%s")

	for _, c := range inp3Capabilities {
		if v, ok := f.Field(c.field, 5); ok && v == "true" {
			w.Fit(len(c.label))
			w.WriteString(c.label)
		}
	}

	if ts, ok := f.Field("timestamp", 40); ok {
		d.inp3Timestamp(ts)
	}

	d.fitted(f, "tzMins", 8, " tz=%s")
}

// inp3Timestamp writes an ISO-8601 value as received, or a Unix epoch as
// local day/month and time.
func (d *Decoder) inp3Timestamp(ts string) {
	w := d.out

	if strings.ContainsRune(ts, 'T') {
		w.Fit(1 + len(ts))
		w.WriteString(" " + ts)
		return
	}

	secs, ok := parseEpoch(ts)
	if !ok || secs <= minEpoch {
		return
	}
	stamp := time.Unix(secs, 0).In(d.loc).Format(" 02/01 15:04")
	w.Fit(len(stamp))
	w.WriteString(stamp)
}

// fitted is optional with a wrap check for the formatted width.
func (d *Decoder) fitted(f record.Fields, name string, max int, format string) {
	v, ok := f.Field(name, max)
	if !ok {
		return
	}
	text := fmt.Sprintf(format, v)
	d.out.Fit(runewidth.StringWidth(text))
	d.out.WriteString(text)
}
