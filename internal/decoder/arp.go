package decoder

import (
	"pnmptrace/internal/output"
	"pnmptrace/internal/record"
)

const arpFieldLen = 79

func (d *Decoder) arp(f record.Fields) {
	op, ok := f.Field("arpOp", arpFieldLen)
	if !ok {
		return
	}

	d.out.Printf("%sARP %s", output.Margin, op)
	d.optional(f, "arpHwType", arpFieldLen, " hwtype=%s")
	d.optional(f, "arpHwLen", arpFieldLen, " hwlen=%s")
	d.optional(f, "arpPtcl", arpFieldLen, " prot=%s")
	d.optional(f, "arpSndAddr", arpFieldLen, output.Margin+"snd=%s")
	d.optional(f, "arpTgtAddr", arpFieldLen, " tgt=%s")
	d.optional(f, "arpSndHw", arpFieldLen, " snd_hw=%s")
	d.optional(f, "arpTgtHw", arpFieldLen, " tgt_hw=%s")
}
