// Package io provides JSON and YAML import and export for parsed topologies.
//
// # Overview
//
// The document format is a flattened view of [topology.Graph] with entities
// in id order and links in dump order. Pad-to-link ownership is kept as
// indices into the link array, so a document re-imports to an identical
// graph:
//
//	{
//	  "entities": [
//	    {
//	      "id": 1,
//	      "name": "rs300 10-003c",
//	      "type": "type V4L2 subdev subtype Sensor flags 0",
//	      "class": "sensor",
//	      "pads": [
//	        {"id": 0, "direction": "Source", "format": "[fmt:YUYV8_2X8/640x512 field:none]", "links": [0]}
//	      ]
//	    }
//	  ],
//	  "links": [
//	    {"source_entity": "rs300 10-003c", "source_pad": 0, "sink_entity": "csi2", "sink_pad": 0,
//	     "status": "ENABLED", "state": "ENABLED"}
//	  ]
//	}
//
// "class" and "state" are derived on export and ignored on import.
//
// # Import
//
// [ReadJSON] and [ReadYAML] decode from any io.Reader; [ImportFile] picks
// the decoder from the file extension. A pad that references a link index
// outside the link array is rejected.
//
// # Export
//
// [WriteJSON], [WriteYAML] and [Write] encode to any io.Writer;
// [ExportFile] writes a file, again choosing the encoding by extension.
//
// [topology.Graph]: github.com/matzehuels/mediatopo/pkg/topology.Graph
package io
