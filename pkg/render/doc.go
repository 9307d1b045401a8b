// Package render wraps the external programs that turn DOT into pictures.
//
// # Overview
//
// The topology core never lays anything out. It hands DOT text to one of
// two engines:
//
//   - the in-process Graphviz library, see the [nodelink] subpackage
//   - the system "dot" binary, through [Dot]
//
// PDF output always goes through SVG and the rsvg-convert tool, see [ToPDF].
//
//	if err := render.Dot(ctx, "media_topology.dot", "png", "media_topology.png"); err != nil {
//	    // errors.Is(err, errors.ErrCodeRendererMissing) when dot is not installed
//	}
//
// [nodelink]: github.com/matzehuels/mediatopo/pkg/render/nodelink
package render
