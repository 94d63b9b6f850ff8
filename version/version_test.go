package version

import (
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit := Version, GitCommit
	return func() {
		Version = origVersion
		GitCommit = origCommit
	}
}

func TestShortWithCommit(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0"
	GitCommit = "abc1234"

	if got := Short(); got != "1.2.0-abc1234" {
		t.Errorf("Short() = %q, want 1.2.0-abc1234", got)
	}
}

func TestUserAgent(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0"
	GitCommit = "abc1234"

	ua := UserAgent()
	if !strings.HasPrefix(ua, "clientkit/1.2.0") {
		t.Errorf("UserAgent() = %q", ua)
	}
}

func TestIsRelease(t *testing.T) {
	defer saveAndRestore()()

	Version = "dev"
	if IsRelease() {
		t.Error("dev should not be a release")
	}
	Version = "1.0.0-dirty"
	if IsRelease() {
		t.Error("dirty builds should not be releases")
	}
	Version = "1.0.0"
	if !IsRelease() {
		t.Error("1.0.0 should be a release")
	}
}
