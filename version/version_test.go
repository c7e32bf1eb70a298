package version

import "testing"

func TestGetFullVersion(t *testing.T) {
	restore := CommitHash
	t.Cleanup(func() { CommitHash = restore })

	cases := []struct {
		hash string
		want string
	}{
		{"unknown", Version},
		{"", Version},
		{"abc", Version},
		{"0123456789abcdef", Version + " (0123456)"},
	}
	for _, tc := range cases {
		CommitHash = tc.hash
		if got := GetFullVersion(); got != tc.want {
			t.Errorf("GetFullVersion() with hash %q = %q, want %q", tc.hash, got, tc.want)
		}
	}
}
