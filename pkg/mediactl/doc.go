// Package mediactl obtains media-controller topology dumps.
//
// # Overview
//
// A [Source] yields the text printed by "media-ctl --print-topology". The
// parser in [topology] does not care where that text came from, so the same
// pipeline runs against a live device, a saved dump, or a string in a test:
//
//   - [Command] runs media-ctl against a device node such as /dev/media0
//   - [File] reads a saved dump ("-" is standard input)
//   - [Static] holds the dump in memory
//
// # Discovery
//
// Boards with several media controllers expose /dev/media0, /dev/media1 and
// so on. [Discover] walks them in order and returns the first one whose dump
// mentions a marker, by default the RS300 sensor at I2C address 10-003c.
// [Probe] returns every present device with a short summary instead, which
// the CLI uses for listing and interactive selection.
//
// [topology]: github.com/matzehuels/mediatopo/pkg/topology
package mediactl
