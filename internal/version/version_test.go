package version

import "testing"

func TestGet_UsesLdflags(t *testing.T) {
	origV, origSHA, origTime := Version, GitSHA, BuildTime
	defer func() { Version, GitSHA, BuildTime = origV, origSHA, origTime }()

	Version, GitSHA, BuildTime = "v1.2.3", "abc1234", "2025-06-01T00:00:00Z"
	info := Get()
	if info.Version != "v1.2.3" || info.GitSHA != "abc1234" || info.BuildTime != "2025-06-01T00:00:00Z" {
		t.Errorf("Get() = %+v", info)
	}
}

func TestGet_Defaults(t *testing.T) {
	info := Get()
	if info.Version == "" {
		t.Error("Version should never be empty")
	}
	if info.GitSHA == "" || info.BuildTime == "" {
		t.Errorf("Get() = %+v, want non-empty fallbacks", info)
	}
}
