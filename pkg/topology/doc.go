// Package topology models the entity/pad/link graph of a V4L2 media controller
// and recovers it from the text printed by `media-ctl --print-topology`.
//
// # Overview
//
// A media controller exposes a pipeline of processing entities (sensors,
// CSI-2 receivers, ISP blocks, DMA engines). Each entity owns numbered pads
// that are either a Source or a Sink, and links connect a source pad of one
// entity to a sink pad of another. The dump looks like this:
//
//	- entity 1: rs300 10-003c (1 pad, 1 link)
//	            type V4L2 subdev subtype Sensor flags 0
//	            device node name /dev/v4l-subdev2
//		pad0: Source
//			[fmt:YUYV8_2X8/640x512 field:none colorspace:srgb]
//			-> "csi2":0 [ENABLED,IMMUTABLE]
//
// # Parsing
//
// [Parse] is a single forward pass over trimmed lines. It is total: lines it
// does not recognise (bus info, driver version, interface records) are
// skipped, and no input makes it fail. The pass is a fold of [Step] over the
// lines, so the state machine can be driven one line at a time:
//
//	st := topology.NewState()
//	for _, line := range lines {
//	    st = topology.Step(st, line)
//	}
//	g := st.Graph
//
// Each line is classified by an ordered rule table. The first rule that
// matches wins: entity header, type, device node, pad header, format, link.
//
// # Links
//
// Links reference their endpoints by entity name, not by id. A peer may be
// named by a link without ever getting its own entity header, so callers
// must treat [Graph.EntityByName] as a lookup that can miss. Links are kept
// in textual order and are not deduplicated: a connection printed from both
// ends appears twice.
package topology
