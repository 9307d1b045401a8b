// Package pkg holds the libraries behind mediatopo, which turns the output of
// `media-ctl --print-topology` into Graphviz diagrams of a V4L2 media graph.
//
// # Architecture
//
// A topology dump flows through the packages in this order:
//
//	media-ctl -d /dev/mediaN -p   (or a saved dump)
//	         ↓
//	    [mediactl] acquire the text, auto-detect the device
//	         ↓
//	    [topology] parse entities, pads and links into a Graph
//	         ↓
//	    [render/nodelink] build DOT source
//	         ↓
//	    [render] lay out and convert to SVG/PNG/PDF
//
// [pipeline] strings these steps together for the CLI and the HTTP server,
// caching rendered artifacts through [cache].
//
// # Quick Start
//
//	g := topology.Parse(text)
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//
// # Packages
//
// [topology] - Data model and text parser for media-ctl topology dumps.
//
// [render/nodelink] - DOT generation with colour-coded entity roles and
// link states.
//
// [render] - Layout through the embedded Graphviz or the system dot binary,
// plus SVG to PNG/PDF conversion.
//
// [mediactl] - Running media-ctl, probing /dev/media* and picking the camera
// device.
//
// [analysis] - Link summaries and the sensor/receiver format check.
//
// [pipeline] - Options, sources and the caching Runner used by every command.
//
// [cache] - File, Redis and null artifact caches.
//
// [io] - JSON and YAML export of a parsed topology.
//
// [metrics] and [observability] - Prometheus collectors behind pluggable hooks.
//
// [errors] - Coded errors with HTTP status and user-facing messages.
//
// [buildinfo] - Version information stamped at build time.
package pkg
