package buildinfo

import "testing"

func TestFieldsOmitsUnsetValues(t *testing.T) {
	BuildTime, CommitHash = "", ""
	f := Fields()
	if f["version"] != Version {
		t.Errorf("version = %q, want %q", f["version"], Version)
	}
	if _, ok := f["commit"]; ok {
		t.Error("commit should be omitted when unset")
	}

	CommitHash = "abc1234"
	defer func() { CommitHash = "" }()
	if got := Fields()["commit"]; got != "abc1234" {
		t.Errorf("commit = %q", got)
	}
}
