package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	old := Version
	Version = "v0.3.0"
	defer func() { Version = old }()

	if !strings.Contains(Template(), "version v0.3.0") {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.HasPrefix(String(), "version: v0.3.0\n") {
		t.Errorf("String() = %q", String())
	}
}
