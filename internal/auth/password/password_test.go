package password

import "testing"

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("Sup3r$ecret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "Sup3r$ecret" {
		t.Fatalf("hash must not equal the plain password")
	}
	if err := Compare(hash, "Sup3r$ecret"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := Compare(hash, "wrong"); err == nil {
		t.Fatalf("expected mismatch")
	}
}
