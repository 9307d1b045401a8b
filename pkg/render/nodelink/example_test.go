package nodelink_test

import (
	"fmt"

	"github.com/matzehuels/mediatopo/pkg/render/nodelink"
	"github.com/matzehuels/mediatopo/pkg/topology"
)

func ExampleSanitizeID() {
	fmt.Println(nodelink.SanitizeID("rs300 10-003c"))
	fmt.Println(nodelink.SanitizeID("3a"))
	fmt.Println(nodelink.SanitizeID(""))
	// Output:
	// rs300_10_003c
	// entity_3a
	// unknown
}

func ExampleEdgeStyleFor() {
	s := nodelink.EdgeStyleFor("DISABLED")
	fmt.Println(s.Color, s.Style, s.PenWidth)
	// Output:
	// red dashed 1
}

func ExampleClassify() {
	e := topology.NewEntity(30, "rp1-cfe-csi2_ch0")
	e.DeviceNode = "/dev/video0"
	c := nodelink.Classify(e, nodelink.DefaultMarkers())
	fmt.Println(c, c.Shape(), c.FillColor())
	// Output:
	// bridge hexagon lightcyan
}
