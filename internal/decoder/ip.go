package decoder

import (
	"strconv"
	"strings"

	"github.com/google/gopacket/layers"

	"pnmptrace/internal/output"
	"pnmptrace/internal/record"
)

const ipAddrLen = 15

func (d *Decoder) ip(f record.Fields) {
	// Older reporters leave the IP fields out altogether.
	src, ok1 := f.Field("ipFrom", ipAddrLen)
	dst, ok2 := f.Field("ipTo", ipAddrLen)
	if !ok1 || !ok2 {
		return
	}

	d.out.Printf("%sIP: %s > %s", output.Margin, src, dst)
	d.optional(f, "ipLen", 6, " iplen=%s")
	d.optional(f, "ipTTL", 3, " ttl=%s")
	d.optional(f, "ipID", 6, " id=%s")
	ptcl, _ := d.optional(f, "ipPtcl", 6, " ptcl=%s")

	if _, ok := d.optional(f, "ipProto", 8, " %s"); ok {
		return
	}
	if name, ok := ipProtocolName(ptcl); ok {
		d.out.WriteString(" " + name)
	}
}

// ipProtocolName resolves an IP protocol number the reporter did not
// name itself.
func ipProtocolName(number string) (string, bool) {
	n, err := strconv.ParseUint(number, 10, 8)
	if err != nil {
		return "", false
	}
	name := layers.IPProtocol(n).String()
	if strings.HasPrefix(name, "Unknown") {
		return "", false
	}
	return name, true
}
