package decoder

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pnmptrace/internal/config"
	"pnmptrace/internal/output"
	"pnmptrace/internal/record"
)

const l2 = `"@type":"L2Trace","reportFrom":"G8PZT","port":"1","srce":"M0ABC","dest":"M0XYZ",`

func render(t *testing.T, body string, opts ...func(*config.DisplayConfig)) string {
	t.Helper()

	display := config.DefaultConfig().Display
	display.Color = false
	for _, opt := range opts {
		opt(&display)
	}

	var buf bytes.Buffer
	d := New(output.New(&buf, nil, display), display)
	d.loc = time.UTC

	f := record.Raw(body).View(display.LegacySearch)
	tc, err := Extract(f, time.Now)
	require.NoError(t, err)
	d.Decode(f, tc)
	return buf.String()
}

func withWarnings(d *config.DisplayConfig) { d.Warnings = true }
func withLegacy(d *config.DisplayConfig)   { d.LegacySearch = true }

func TestDecodeCoreLine(t *testing.T) {
	assert.Equal(t, "M0ABC>M0XYZ<UI>", render(t, l2+`"l2Type":"UI"`))
}

func TestDecodeControlBitsAndCRC(t *testing.T) {
	got := render(t, l2+`"l2Type":"I","cr":"C","pf":"P","rseq":3,"tseq":5,"ilen":10,"pid":"F0","ptcl":"DATA","icrc":"1A2B"`)
	assert.Equal(t, "M0ABC>M0XYZ<I C P R3 S5> ilen=10 pid=F0 DATA CRC=1A2B", got)
}

func TestDecodeDataInfo(t *testing.T) {
	got := render(t, l2+`"l2Type":"UI","ptcl":"DATA","info":"hello"`)
	assert.Equal(t, "M0ABC>M0XYZ<UI> DATA:\n    hello", got)
}

func TestDecodeIP(t *testing.T) {
	const ip = l2 + `"l2Type":"UI","ptcl":"IP",`

	tests := []struct {
		name string
		body string
		want string
	}{
		{"addresses and length", ip + `"ipFrom":"44.1.1.1","ipTo":"44.1.1.2","ipLen":"28"`,
			" IP\n    IP: 44.1.1.1 > 44.1.1.2 iplen=28"},
		{"reported protocol name", ip + `"ipFrom":"44.1.1.1","ipTo":"44.1.1.2","ipTTL":"127","ipID":"ABA0","ipPtcl":"1","ipProto":"ICMP"`,
			" IP\n    IP: 44.1.1.1 > 44.1.1.2 ttl=127 id=ABA0 ptcl=1 ICMP"},
		{"resolved protocol name", ip + `"ipFrom":"44.1.1.1","ipTo":"44.1.1.2","ipPtcl":"6"`,
			" IP\n    IP: 44.1.1.1 > 44.1.1.2 ptcl=6 TCP"},
		{"unassigned protocol number", ip + `"ipFrom":"44.1.1.1","ipTo":"44.1.1.2","ipPtcl":"253"`,
			" ptcl=253"},
		{"older reporter", ip + `"ipFrom":"44.1.1.1"`, "<UI> IP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, strings.HasSuffix(render(t, tt.body), tt.want))
		})
	}
}

func TestDecodeARP(t *testing.T) {
	got := render(t, l2+`"l2Type":"UI","ptcl":"ARP","arpOp":"REQUEST","arpHwType":"AX25","arpHwLen":"7",`+
		`"arpPtcl":"IP","arpSndAddr":"44.1.1.1","arpTgtAddr":"44.1.1.2","arpSndHw":"M0ABC","arpTgtHw":"M0XYZ"`)
	assert.Equal(t, "M0ABC>M0XYZ<UI> ARP\n    ARP REQUEST hwtype=AX25 hwlen=7 prot=IP"+
		"\n    snd=44.1.1.1 tgt=44.1.1.2 snd_hw=M0ABC tgt_hw=M0XYZ", got)

	assert.Equal(t, "M0ABC>M0XYZ<UI> ARP", render(t, l2+`"l2Type":"UI","ptcl":"ARP"`))
}

const netrom = l2 + `"l2Type":"I","ptcl":"NET/ROM",`

func TestDecodeNetRomLayer3Dispatch(t *testing.T) {
	assert.Equal(t, "M0ABC>M0XYZ<I> NET/ROM", render(t, netrom+`"l3Type":"Routing poll"`))
	assert.Equal(t, "M0ABC>M0XYZ<I> NET/ROM", render(t, netrom+`"l3Type":"Bogus"`))
	assert.Equal(t, "M0ABC>M0XYZ<I> NET/ROM [unknown 'l3Type': 'Bogus']", render(t, netrom+`"l3Type":"Bogus"`, withWarnings))
	assert.Equal(t, "M0ABC>M0XYZ<I> NET/ROM [missing 'l3Type']", render(t, netrom+`"l3src":"G8PZT"`, withWarnings))

	off := func(d *config.DisplayConfig) { d.NetRom = false }
	assert.Equal(t, "M0ABC>M0XYZ<I> NET/ROM", render(t, netrom+`"l3Type":"NetRom","l3src":"G8PZT"`, off))
}

const l3 = netrom + `"l3Type":"NetRom","l3src":"G8PZT-1","l3dst":"M0XYZ-2","ttl":25,`

func TestDecodeConnectRequest(t *testing.T) {
	got := render(t, l3+`"l4type":"CONN REQ","toCct":12,"window":4,"srcUser":"M0ABC","srcNode":"G8PZT-1","service":"0","l4t1":"120","bpqSpy":"1"`)
	assert.Equal(t, "M0ABC>M0XYZ<I> NET/ROM\n    NTRM: G8PZT-1 to M0XYZ-2 ttl=25 cct=12 <CONN REQ> w=4"+
		"\n          M0ABC at G8PZT-1 svc=0 t/o=120 bpqSpy=1", got)

	got = render(t, l3+`"l4type":"CONN_REQX","toCct":12,"window":4,"srcNode":"G8PZT-1","chokeFlag":"0"`)
	assert.True(t, strings.HasSuffix(got, " cct=12 <CONN_REQX> w=4 <CHOKE>"), got)
}

func TestDecodeLayer4Types(t *testing.T) {
	tests := []struct {
		name string
		l4   string
		want string
	}{
		{"connect ack", `"l4type":"CONN ACK","toCct":1,"fromCct":9,"window":4`, " cct=1 <CONN ACK> w=4 myCct=9"},
		{"connect nak", `"l4type":"CONN NAK","toCct":1`, " cct=1 <CONN NAK>"},
		{"disconnect", `"l4type":"DREQ","toCct":1`, " cct=1 <DREQ>"},
		{"reset", `"l4type":"RSET","toCct":1,"fromCct":2`, " cct=1 <RSET> myCct=2"},
		{"info with flags", `"l4type":"INFO","toCct":3,"txSeq":1,"rxSeq":2,"paylen":5,"payload":"hello","moreFlag":0,"nakFlag":1`,
			" cct=3 <INFO S1 R2> ilen=5:\n    hello <NAK> <MORE>"},
		{"info ack", `"l4type":"INFO ACK","toCct":3,"rxSeq":4`, " cct=3 <INFO ACK R4>"},
		{"protocol extension", `"l4type":"PROT EXT","l4Family":"1","l4Proto":"2","toCct":7`, "ttl=25 <PROT EXT> pf=1 prot=2"},
		{"tag only", `"l4type":"NCMP","toCct":7`, "ttl=25 <NCMP>"},
		{"record route", `"l4type":"NRR Reply","nrrId":"77","nrrRoute":"G8PZT M0XYZ*"`,
			" <NRR Reply> id=77\n    Route: G8PZT M0XYZ*"},
		{"no layout", `"l4type":"FUTURE","toCct":5,"chokeFlag":1`, "ttl=25 cct=5 <CHOKE>"},
		// Flags follow every branch, not just INFO, INFO ACK and unlisted types.
		{"flags after tag", `"l4type":"NCMP","nakFlag":0`, "ttl=25 <NCMP> <NAK>"},
		{"flags after connect ack", `"l4type":"CONN ACK","toCct":1,"fromCct":9,"window":4,"moreFlag":1`,
			" cct=1 <CONN ACK> w=4 myCct=9 <MORE>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, l3+tt.l4)
			assert.True(t, strings.HasSuffix(got, tt.want), got)
		})
	}
}

func TestDecodeLayer4Aborts(t *testing.T) {
	missing := render(t, l3+`"toCct":5`, withWarnings)
	assert.True(t, strings.HasSuffix(missing, "ttl=25 [missing l4type]"), missing)

	unknown := render(t, l3+`"l4type":"unknown","toCct":5`, withWarnings)
	assert.True(t, strings.HasSuffix(unknown, "ttl=25 [unknown l4type]"), unknown)
	assert.NotContains(t, unknown, "cct=")

	off := func(d *config.DisplayConfig) { d.L4 = false }
	assert.True(t, strings.HasSuffix(render(t, l3+`"l4type":"DREQ","toCct":5`, off), "ttl=25"))
}

func TestDecodeL3RTT(t *testing.T) {
	const rtt = netrom + `"l3Type":"NetRom","l3src":"G8PZT-1","l3dst":"L3RTT","ttl":3,"l4type":"INFO","toCct":0,"paylen":20,"payload":"probe"`

	got := render(t, rtt)
	assert.True(t, strings.HasSuffix(got, "NTRM: G8PZT-1 to L3RTT ttl=3 ilen=20:\n    probe"), got)
	assert.NotContains(t, got, "<INFO")

	hidden := render(t, rtt, func(d *config.DisplayConfig) { d.L3RTT = false })
	assert.True(t, strings.HasSuffix(hidden, "ttl=3 ilen=20"), hidden)
}

const routeGB7ABC = `{"call":"GB7ABC","alias":"TEST","via":"GB7DEF","qual":"20"}`

func TestDecodeNodesBroadcast(t *testing.T) {
	body := netrom + `"l3Type":"Routing info","type":"NODES","fromAlias":"KIDDER","nodes":[` + routeGB7ABC + `]`

	for _, legacy := range []bool{false, true} {
		got := render(t, body, func(d *config.DisplayConfig) { d.LegacySearch = legacy })
		assert.True(t, strings.HasSuffix(got, "\n    NODES Broadcast from KIDDER:\n    GB7ABC:TEST via GB7DEF qlty=20"), got)
	}

	off := func(d *config.DisplayConfig) { d.Nodes = false }
	assert.Equal(t, "M0ABC>M0XYZ<I> NET/ROM NODES Broadcast", render(t, body, off))
}

func TestDecodeNodesArrayBeforeAlias(t *testing.T) {
	body := netrom + `"l3Type":"Routing info","type":"NODES","nodes":[` + routeGB7ABC + `],"fromAlias":"KIDDER"`

	scoped := render(t, body, withWarnings)
	assert.Contains(t, scoped, "GB7ABC:TEST via GB7DEF qlty=20")

	// The textual search only looks for the array after the alias.
	legacy := render(t, body, withWarnings, withLegacy)
	assert.True(t, strings.HasSuffix(legacy, "NODES Broadcast from KIDDER: [missing 'nodes' array]"), legacy)
}

func TestDecodeRoutingInfoWarnings(t *testing.T) {
	got := render(t, netrom+`"l3Type":"Routing info","type":"XYZ"`, withWarnings)
	assert.True(t, strings.HasSuffix(got, " [unknown 'type' 'XYZ']"), got)

	got = render(t, netrom+`"l3Type":"Routing info","type":"NODES"`, withWarnings)
	assert.True(t, strings.HasSuffix(got, " [missing 'fromAlias']"), got)
}

const inp3 = netrom + `"l3Type":"Routing info","type":"INP3","nodes":[`

func TestDecodeINP3(t *testing.T) {
	body := inp3 +
		`{"call":"GB7BDH","hops":2,"tt":3,"alias":"BDH","software":"XRPi","version":"504k",` +
		`"isNode":true,"isBBS":"false","isRMS":true,"timestamp":1761300412},` +
		`{"call":"GB7ABC","tt":1,"timestamp":"2025-10-24T12:46:52Z","tzMins":60},` +
		`{"call":"GB7OLD","tt":1,"timestamp":"17"}]`

	got := render(t, body)

	first := "\n    GB7BDH   " + "  hp=2 " + "  tt=3    " + "  Alias=BDH   " + " S/W=XRPi" + " v504k" + " NODE" + " RMS" +
		"\n        " + " 24/10 10:06"
	second := "\n    GB7ABC   " + "  tt=1    " + " 2025-10-24T12:46:52Z" + " tz=60"
	third := "\n    GB7OLD   " + "  tt=1    "

	assert.Equal(t, "M0ABC>M0XYZ<I> NET/ROM\n    INP3 Routing Unicast:"+first+second+third, got)
	assert.NotContains(t, got, " BBS")

	off := func(d *config.DisplayConfig) { d.INP3 = false }
	assert.Equal(t, "M0ABC>M0XYZ<I> NET/ROM INP3", render(t, body, off))
}

func TestDecodeINP3StaysWithinWidth(t *testing.T) {
	body := inp3 +
		`{"call":"GB7BDH","hops":2,"tt":3,"alias":"BDH","latitude":"5128.75N","longitude":"00158.26W",` +
		`"software":"XRPi","version":"504k","isNode":true,"isBBS":true,"isPMS":true,"isXRChat":true,` +
		`"isRTChat":true,"isRMS":true,"isDXClus":true,"timestamp":"2025-10-24T12:46:52Z","tzMins":-300}]`

	for _, width := range []int{30, 40, 80} {
		got := render(t, body, func(d *config.DisplayConfig) { d.Width = width })
		for _, line := range strings.Split(got, "\n") {
			assert.Less(t, runewidth.StringWidth(line), width, "width %d: %q", width, line)
		}
		assert.Contains(t, got, "DXCLUS")
	}
}

func TestExtract(t *testing.T) {
	f := record.Raw(l2 + `"l2Type":"UI","dirn":"sent","isRF":"true","ptcl":"NET/ROM","time":1761310012`).Object()
	tc, err := Extract(f, time.Now)
	require.NoError(t, err)

	assert.Equal(t, "G8PZT", tc.Reporter)
	assert.Equal(t, "1", tc.Port)
	assert.Equal(t, "sent", tc.DirnText)
	assert.True(t, tc.HasProtocol)
	assert.Equal(t, "12:46:52", tc.Timestamp.UTC().Format("15:04:05"))
}

func TestExtractRejects(t *testing.T) {
	now := func() time.Time { return time.Unix(0, 0) }

	_, err := Extract(record.Raw(`"reportFrom":"G8PZT"`).Object(), now)
	assert.ErrorIs(t, err, ErrMissingKind)

	_, err = Extract(record.Raw(`"@type":"NodeStatus","reportFrom":"G8PZT"`).Object(), now)
	assert.ErrorIs(t, err, ErrOtherKind)

	_, err = Extract(record.Raw(`"@type":"L2Trace","reportFrom":"G8PZT","port":"1","srce":"A"`).Object(), now)
	assert.ErrorIs(t, err, ErrMissingMandatory)

	tc, err := Extract(record.Raw(l2+`"l2Type":"UI"`).Object(), now)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(0, 0), tc.Timestamp)
	assert.False(t, tc.HasProtocol)
}
