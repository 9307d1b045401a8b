package nodelink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/mediatopo/pkg/topology"
)

// GraphName is the name of the digraph emitted by [ToDOT].
const GraphName = "MediaTopology"

// labelBreak is the line separator inside DOT labels.
const labelBreak = `\n`

// Options configures DOT generation.
type Options struct {
	// Markers decide node classes. Zero fields fall back to DefaultMarkers.
	Markers Markers

	// Detailed adds the entity type descriptor to every node label.
	Detailed bool
}

// DefaultOptions returns options with [DefaultMarkers].
func DefaultOptions() Options {
	return Options{Markers: DefaultMarkers()}
}

// ToDOT converts a topology graph to Graphviz DOT. Nodes are emitted in
// entity id order and edges in link order, so the output is stable for a
// given graph.
func ToDOT(g *topology.Graph, opts Options) string {
	markers := opts.Markers.WithDefaults()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", GraphName)
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")
	writeLegend(&buf)
	buf.WriteString("\n")

	for _, e := range g.SortedEntities() {
		class := Classify(e, markers)
		label := fmtNodeLabel(e, class, opts.Detailed)
		fmt.Fprintf(&buf, "  %s [label=\"%s\", shape=%s, style=filled, fillcolor=%s];\n",
			SanitizeID(e.Name), label, class.Shape(), class.FillColor())
	}

	buf.WriteString("\n")
	for _, l := range g.Links {
		style := EdgeStyleFor(l.Status)
		fmt.Fprintf(&buf, "  %s -> %s [label=\"%s\", color=%s, style=%s, penwidth=%d];\n",
			SanitizeID(l.SourceEntity), SanitizeID(l.SinkEntity),
			fmtEdgeLabel(l), style.Color, style.Style, style.PenWidth)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeLegend(buf *bytes.Buffer) {
	buf.WriteString("  subgraph cluster_legend {\n")
	buf.WriteString("    label=\"Status Legend\";\n")
	buf.WriteString("    style=filled;\n")
	buf.WriteString("    color=lightgrey;\n")
	buf.WriteString("    legend_enabled [label=\"ENABLED\", style=filled, fillcolor=lightgreen];\n")
	buf.WriteString("    legend_disabled [label=\"DISABLED\", style=filled, fillcolor=lightcoral];\n")
	buf.WriteString("    legend_unknown [label=\"No Status\", style=filled, fillcolor=lightyellow];\n")
	buf.WriteString("  }\n")
}

func fmtNodeLabel(e *topology.Entity, class NodeClass, detailed bool) string {
	parts := []string{e.Name}
	if e.DeviceNode != "" {
		parts = append(parts, "("+e.DeviceNode+")")
	}
	if detailed && e.Type != "" {
		parts = append(parts, e.Type)
	}
	if class.ShowsFormats() {
		for _, id := range e.PadIDs() {
			p := e.Pads[id]
			if !strings.Contains(p.Format, "fmt:") {
				continue
			}
			codec, res, ok := ParseFormat(p.Format)
			if !ok {
				continue
			}
			parts = append(parts, fmt.Sprintf("pad%d: %s", id, codec), "("+res+")")
		}
	}
	return joinLabel(parts)
}

func fmtEdgeLabel(l *topology.Link) string {
	parts := []string{fmt.Sprintf("pad%d→pad%d", l.SourcePad, l.SinkPad)}
	if l.Status != "" {
		parts = append(parts, "["+l.Status+"]")
	}
	return joinLabel(parts)
}

// joinLabel escapes each line for a quoted DOT string and joins them with
// the \n escape.
func joinLabel(parts []string) string {
	for i, p := range parts {
		parts[i] = escapeLabel(p)
	}
	return strings.Join(parts, labelBreak)
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

func escapeLabel(s string) string {
	return labelEscaper.Replace(s)
}
