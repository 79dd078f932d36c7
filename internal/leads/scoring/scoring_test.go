package scoring

import (
	"reflect"
	"strings"
	"testing"
)

func TestCalculateScenarios(t *testing.T) {
	cases := []struct {
		name    string
		in      Input
		score   int
		reasons []string
	}{
		{
			name:    "empty lead uses defaults",
			in:      Input{},
			score:   10,
			reasons: []string{"Source: Other (+5)", "Stage: New (+5)"},
		},
		{
			name:  "fully qualified referral won",
			in:    Input{Email: "a@b.com", Phone: "123", Company: "Acme", Source: "Referral", Status: "Won"},
			score: 100,
			reasons: []string{
				"Has email address (+15)",
				"Has phone number (+15)",
				"Has company info (+15)",
				"Source: Referral (+20)",
				"Stage: Won (+35)",
			},
		},
		{
			name:    "linkedin proposal",
			in:      Input{Source: "LinkedIn", Status: "Proposal"},
			score:   45,
			reasons: []string{"Source: LinkedIn (+20)", "Stage: Proposal (+25)"},
		},
		{
			name:    "whitespace email is absent",
			in:      Input{Email: "  "},
			score:   10,
			reasons: []string{"Source: Other (+5)", "Stage: New (+5)"},
		},
		{
			name:    "unknown source named literally",
			in:      Input{Source: "TikTok"},
			score:   10,
			reasons: []string{"Source: TikTok (+5)", "Stage: New (+5)"},
		},
		{
			name:    "unknown stage falls back",
			in:      Input{Status: "On Hold"},
			score:   10,
			reasons: []string{"Source: Other (+5)", "Stage: On Hold (+5)"},
		},
		{
			name:    "lost contributes nothing",
			in:      Input{Company: "Acme", Source: "Website", Status: "Lost"},
			score:   25,
			reasons: []string{"Has company info (+15)", "Source: Website (+10)", "Stage: Lost (+0)"},
		},
		{
			name:    "whitespace source and stage take defaults",
			in:      Input{Source: "   ", Status: "\t"},
			score:   10,
			reasons: []string{"Source: Other (+5)", "Stage: New (+5)"},
		},
		{
			name:    "padded source is looked up verbatim",
			in:      Input{Source: " LinkedIn ", Status: "Won "},
			score:   10,
			reasons: []string{"Source:  LinkedIn  (+5)", "Stage: Won  (+5)"},
		},
		{
			name:    "lookup is case sensitive",
			in:      Input{Source: "referral", Status: "won"},
			score:   10,
			reasons: []string{"Source: referral (+5)", "Stage: won (+5)"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Calculate(tc.in)
			if got.Score != tc.score {
				t.Fatalf("score = %d, want %d", got.Score, tc.score)
			}
			if !reflect.DeepEqual(got.Reasons, tc.reasons) {
				t.Fatalf("reasons = %q, want %q", got.Reasons, tc.reasons)
			}
		})
	}
}

func TestCalculateProperties(t *testing.T) {
	presence := []string{"", " ", "x"}
	sources := []string{"", "Referral", "LinkedIn", "Website", "Cold Call", "Advertisement", "Other", "Import", "TikTok"}
	stages := []string{"", "New", "Contacted", "Qualified", "Proposal", "Negotiation", "Won", "Lost", "Archived"}

	for _, email := range presence {
		for _, phone := range presence {
			for _, company := range presence {
				for _, source := range sources {
					for _, stage := range stages {
						in := Input{Email: email, Phone: phone, Company: company, Source: source, Status: stage}
						checkProperties(t, in)
					}
				}
			}
		}
	}
}

func checkProperties(t *testing.T, in Input) {
	t.Helper()
	got := Calculate(in)

	if got.Score < 0 || got.Score > MaxScore {
		t.Fatalf("%+v: score %d out of range", in, got.Score)
	}

	sourceReasons, stageReasons := 0, 0
	for _, r := range got.Reasons {
		if strings.HasPrefix(r, "Source: ") {
			sourceReasons++
		}
		if strings.HasPrefix(r, "Stage: ") {
			stageReasons++
		}
	}
	if sourceReasons != 1 || stageReasons != 1 {
		t.Fatalf("%+v: expected one source and one stage reason, got %q", in, got.Reasons)
	}

	hasReason := func(prefix string) bool {
		for _, r := range got.Reasons {
			if strings.HasPrefix(r, prefix) {
				return true
			}
		}
		return false
	}
	if hasReason("Has email") != present(in.Email) {
		t.Fatalf("%+v: email reason mismatch", in)
	}
	if hasReason("Has phone") != present(in.Phone) {
		t.Fatalf("%+v: phone reason mismatch", in)
	}
	if hasReason("Has company") != present(in.Company) {
		t.Fatalf("%+v: company reason mismatch", in)
	}

	if again := Calculate(in); !reflect.DeepEqual(again, got) {
		t.Fatalf("%+v: not idempotent", in)
	}

	filled := in
	filled.Email, filled.Phone, filled.Company = "a@b.com", "1", "Acme"
	if Calculate(filled).Score < got.Score {
		t.Fatalf("%+v: adding presence fields lowered the score", in)
	}
}

func TestReasonOrderIsFixed(t *testing.T) {
	got := Calculate(Input{Company: "Acme", Email: "a@b.com", Status: "Qualified", Source: "Website"})
	want := []string{
		"Has email address (+15)",
		"Has company info (+15)",
		"Source: Website (+10)",
		"Stage: Qualified (+15)",
	}
	if !reflect.DeepEqual(got.Reasons, want) {
		t.Fatalf("reasons = %q, want %q", got.Reasons, want)
	}
	if got.Score != 55 {
		t.Fatalf("score = %d, want 55", got.Score)
	}
}

func TestTier(t *testing.T) {
	cases := map[int]string{0: "low", 39: "low", 40: "medium", 69: "medium", 70: "high", 100: "high"}
	for score, want := range cases {
		if got := Tier(score); got != want {
			t.Errorf("Tier(%d) = %q, want %q", score, got, want)
		}
	}
}
