// Package nodelink renders a media-controller topology as a Graphviz
// node-link diagram.
//
// # Overview
//
// [ToDOT] turns a [topology.Graph] into DOT source. Entities become nodes,
// links become edges, and a small legend cluster explains the edge colours.
// The layout runs left to right so the data flow reads like the pipeline:
// sensor, then CSI-2 receiver, then capture engine, then video nodes.
//
//	g := topology.Parse(dump)
//	dot := nodelink.ToDOT(g, nodelink.DefaultOptions())
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Node Classes
//
// Each entity is classified by a case-insensitive substring test on its name.
// The first class that matches wins:
//
//   - sensor  (Markers.Sensor, default "rs300"):    lightblue doubleoctagon
//   - bridge  (Markers.Bridge, default "csi2"):     lightcyan hexagon
//   - capture (Markers.Capture, default "rp1-cfe"): lightgreen box
//   - video   (device node has Markers.VideoPrefix): lightyellow oval
//   - other:                                        white box
//
// Sensor and bridge nodes also list the media-bus code and frame size of
// every pad that carries a format.
//
// # Edges
//
// Edge colour and weight follow the link status: ENABLED is solid green,
// DISABLED is dashed red, anything else is dotted grey. Edges may point at
// entities that never had their own header in the dump. They use the same
// [SanitizeID] identifier, and Graphviz creates a plain node for them.
//
// # Rendering
//
// [RenderSVG] and [RenderPNG] run Graphviz in-process through
// [github.com/goccy/go-graphviz]. [RenderPDF] converts the SVG with
// rsvg-convert.
package nodelink
