package mediactl

import (
	"bufio"
	"strings"
)

// Info is the "Media device information" block that precedes the topology.
type Info struct {
	APIVersion    string `json:"api_version,omitempty"`
	Driver        string `json:"driver,omitempty"`
	Model         string `json:"model,omitempty"`
	Serial        string `json:"serial,omitempty"`
	BusInfo       string `json:"bus_info,omitempty"`
	HWRevision    string `json:"hw_revision,omitempty"`
	DriverVersion string `json:"driver_version,omitempty"`
}

var infoFields = map[string]func(*Info, string){
	"driver":         func(i *Info, v string) { i.Driver = v },
	"model":          func(i *Info, v string) { i.Model = v },
	"serial":         func(i *Info, v string) { i.Serial = v },
	"bus info":       func(i *Info, v string) { i.BusInfo = v },
	"hw revision":    func(i *Info, v string) { i.HWRevision = v },
	"driver version": func(i *Info, v string) { i.DriverVersion = v },
}

const apiVersionPrefix = "Media controller API version "

// ParseInfo reads the device information header of a dump. Parsing stops
// at the "Device topology" line; missing fields stay empty.
func ParseInfo(text string) Info {
	var info Info
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "Device topology" {
			break
		}
		if v, ok := strings.CutPrefix(line, apiVersionPrefix); ok {
			info.APIVersion = strings.TrimSpace(v)
			continue
		}
		for key, set := range infoFields {
			rest, ok := strings.CutPrefix(line, key)
			if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
				continue
			}
			// "driver" is a prefix of "driver version"
			if key == "driver" && strings.HasPrefix(strings.TrimSpace(rest), "version") {
				continue
			}
			set(&info, strings.TrimSpace(rest))
		}
	}
	return info
}
