package sanitize

import (
	"reflect"
	"testing"
)

func TestStripHTML(t *testing.T) {
	cases := map[string]string{
		"<b>Acme</b> Corp":                       "Acme Corp",
		"&lt;script&gt;alert(1)&lt;/script&gt;": "alert(1)",
		"  plain  ":                              "plain",
	}
	for in, want := range cases {
		if got := StripHTML(in); got != want {
			t.Errorf("StripHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLineCollapsesWhitespace(t *testing.T) {
	if got := Line("Ravi \n  Kumar"); got != "Ravi Kumar" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestTagsDedupes(t *testing.T) {
	got := Tags([]string{" vip ", "VIP", "", "hot", "<i>hot</i>"})
	want := []string{"vip", "hot"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tags() = %v, want %v", got, want)
	}
}

func TestFold(t *testing.T) {
	if Fold("  ACME École ") != Fold("acme école") {
		t.Fatalf("expected folded forms to match")
	}
}
