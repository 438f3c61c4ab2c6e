package federation

import "testing"

func TestFamilyName(t *testing.T) {
	cases := []struct {
		author string
		want   string
	}{
		{"Jane Doe", "doe"},
		{"  Alice   Wang  ", "wang"},
		{"Müller", "muller"},
		{"", ""},
	}
	for _, c := range cases {
		if got := familyName(c.author); got != c.want {
			t.Errorf("familyName(%q) = %q, want %q", c.author, got, c.want)
		}
	}
}

func TestAuthorsOverlap(t *testing.T) {
	if !authorsOverlap([]string{"Jane Doe", "John Smith"}, []string{"J. Doe"}) {
		t.Fatalf("expected overlap on shared family name Doe")
	}
	if authorsOverlap([]string{"Jane Doe"}, []string{"John Roe"}) {
		t.Fatalf("did not expect overlap for disjoint family names")
	}
	if authorsOverlap(nil, []string{"Jane Doe"}) {
		t.Fatalf("empty refAuthors must never overlap")
	}
	if authorsOverlap([]string{"Jane Doe"}, nil) {
		t.Fatalf("empty foundAuthors must never overlap")
	}
}
