package validator

import (
	"testing"

	"crm_backend/platform/validator"
)

func TestIsStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Sup3r$ecret": true,
		"short1!A":    true,
		"Sh0rt!":      false,
		"alllower1!":  false,
		"ALLUPPER1!":  false,
		"NoDigits!!":  false,
		"NoSpecial12": false,
	}
	for pw, want := range cases {
		if got := IsStrongPassword(pw); got != want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", pw, got, want)
		}
	}
}

func TestRegisterAddsTag(t *testing.T) {
	v := validator.New()
	if err := Register(v); err != nil {
		t.Fatalf("register: %v", err)
	}
	type req struct {
		Password string `json:"password" validate:"strongpassword"`
	}
	if err := v.Struct(req{Password: "weak"}); err == nil {
		t.Fatalf("expected weak password to fail")
	}
	if err := v.Struct(req{Password: "Sup3r$ecret"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
