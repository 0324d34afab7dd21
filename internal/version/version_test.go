package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestGetReflectsStampedValues(t *testing.T) {
	oldVersion, oldCommit := Version, GitCommit
	defer func() {
		Version, GitCommit = oldVersion, oldCommit
	}()

	Version = "1.2.3"
	GitCommit = "abc1234"

	info := Get()
	if info.Version != "1.2.3" {
		t.Errorf("Expected version '1.2.3', got %q", info.Version)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("Expected go version %q, got %q", runtime.Version(), info.GoVersion)
	}

	s := info.String()
	if !strings.HasPrefix(s, "fig 1.2.3") {
		t.Errorf("Expected one-line form to lead with the binary and version, got %q", s)
	}
	if !strings.Contains(s, "abc1234") {
		t.Errorf("Expected one-line form to include the commit, got %q", s)
	}
}
