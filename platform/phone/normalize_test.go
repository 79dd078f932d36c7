package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in, region, want string
	}{
		{"098765 43210", "IN", "+919876543210"},
		{"+31 6 12345678", "IN", "+31612345678"},
		{"06 12345678", "NL", "+31612345678"},
		{"  ", "IN", ""},
		{"not a number", "IN", "not a number"},
		{" 12 ", "IN", "12"},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.in, tc.region); got != tc.want {
			t.Errorf("NormalizeE164(%q, %q) = %q, want %q", tc.in, tc.region, got, tc.want)
		}
	}
}

func TestNormalizerDefaultsRegion(t *testing.T) {
	if got := (Normalizer{}).Normalize("9876543210"); got != "+919876543210" {
		t.Fatalf("unexpected %q", got)
	}
}
