package stringnorm

import "testing"

func TestCleanTitle(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Dixie Chicken (2006 Remaster)", "Dixie Chicken"},
		{"Alive (Live)", "Alive (Live)"},
		{"Snowball (24-bit Studio Master)", "Snowball"},
		{"Komm, susser Tod (Remaster 2019)", "Komm, susser Tod"},
		{"Fake Plastic Trees (Radio Edit)", "Fake Plastic Trees (Radio Edit)"},
		{"Loser (Deluxe Edition)", "Loser"},
	}
	for _, c := range cases {
		if got := CleanTitle(c.in); got != c.want {
			t.Errorf("CleanTitle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
