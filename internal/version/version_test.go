package version

import "testing"

func TestString(t *testing.T) {
	old := [3]string{Version, GitSHA, BuildTime}
	t.Cleanup(func() { Version, GitSHA, BuildTime = old[0], old[1], old[2] })

	Version, GitSHA, BuildTime = "1.2.0", "abc1234", "2026-03-01T12:00:00Z"
	want := "hexapod 1.2.0 (abc1234, built 2026-03-01T12:00:00Z)"
	if got := String("hexapod"); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
