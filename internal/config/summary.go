package config

import "fmt"

// Notices describes the active filters and disabled decoders, one
// sentence each, in the order they are applied.
func (c Config) Notices() []string {
	var out []string
	f, d := c.Filter, c.Display

	if f.Reporter != "" {
		out = append(out, fmt.Sprintf("Showing reports from node '%s' only", f.Reporter))
	}
	if f.Port != 0 {
		out = append(out, fmt.Sprintf("Showing frames to/from port (%d) only", f.Port))
	}
	if f.Source != "" {
		out = append(out, fmt.Sprintf("Showing frames with L2 source call '%s' only", f.Source))
	}
	if f.Destination != "" {
		out = append(out, fmt.Sprintf("Showing frames with L2 destination call '%s' only", f.Destination))
	}
	if f.Either != "" {
		out = append(out, fmt.Sprintf("Showing frames to/from L2 call '%s' only", f.Either))
	}
	if f.FrameType != "" {
		out = append(out, fmt.Sprintf("Showing '%s' frames only", f.FrameType))
	}
	if f.Protocol != "" {
		out = append(out, fmt.Sprintf("Showing frames with L3 protocol '%s' only", f.Protocol))
	}

	if !d.ShowUI {
		out = append(out, "Not showing UI frames")
	}
	if !d.Nodes {
		out = append(out, "Not decoding NODES broadcasts")
	}
	if !d.INP3 {
		out = append(out, "Not decoding INP3 unicasts")
	}
	if !d.NetRom {
		out = append(out, "Not decoding NetRom Layer 3 or above")
	}
	if !d.L4 {
		out = append(out, "Not decoding NetRom Layer 4 or above")
	}
	if !d.L3RTT {
		out = append(out, "Not showing L3RTT frame contents")
	}
	if d.RawJSON {
		out = append(out, "Including JSON data")
	}
	if !d.Timestamp {
		out = append(out, "Time stamp disabled")
	}
	return out
}
