package util

import "testing"

func TestHashUserKey(t *testing.T) {
	id := "acct-12345"
	got := HashUserKey(id)
	if got != HashUserKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(got))
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "q1.csv", want: "q1.csv"},
		{in: " sales 2024.xlsx ", want: "sales 2024.xlsx"},
		{in: "a/b.csv", want: "a_b.csv"},
		{in: `a\b.csv`, want: "a_b.csv"},
		{in: "../etc/passwd", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tc := range cases {
		got, err := SanitizeFileName(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("SanitizeFileName(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("SanitizeFileName(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
