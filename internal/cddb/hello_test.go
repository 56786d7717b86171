package cddb

import "testing"

func TestIdentityString(t *testing.T) {
	id := Identity{User: "joe", Host: "box.local", ClientName: "cd meta", ClientVersion: "1.0"}
	if got := id.String(); got != "joe+box.local+cd_meta+1.0" {
		t.Fatalf("String() = %q", got)
	}
}

func TestIdentityDefaults(t *testing.T) {
	t.Setenv("LOGNAME", "")
	t.Setenv("USER", "alice")
	id := DefaultIdentity("", "")
	if id.User != "alice" {
		t.Fatalf("user = %q, want alice", id.User)
	}
	if id.Host == "" {
		t.Fatal("expected host fallback")
	}
	if id.ClientName != "cdmeta" || id.ClientVersion != "0.1" {
		t.Fatalf("client = %s/%s", id.ClientName, id.ClientVersion)
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "unknown"},
		{"a+b&c", "a_b_c"},
		{" spaced ", "spaced"},
		{"ok.v-1_2", "ok.v-1_2"},
		{"naïve", "na_ve"},
	}
	for _, tc := range cases {
		if got := sanitizeToken(tc.in); got != tc.want {
			t.Fatalf("sanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	if got := sanitizeToken(string(long)); len(got) != maxIdentityToken {
		t.Fatalf("len = %d, want %d", len(got), maxIdentityToken)
	}
}
