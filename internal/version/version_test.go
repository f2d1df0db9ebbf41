package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if info == "" {
		t.Fatal("Info() returned empty string")
	}
	if !strings.Contains(info, "elnet-dashboard") {
		t.Errorf("Info() = %q, expected it to contain the binary name", info)
	}
	if !strings.Contains(info, Version) {
		t.Errorf("Info() = %q, expected it to contain version %q", info, Version)
	}
}
