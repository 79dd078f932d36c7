package validator

import "testing"

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestDetailsUsesJSONNames(t *testing.T) {
	v := New()
	err := v.Struct(sample{Name: "toolongname", Email: "nope"})
	if err == nil {
		t.Fatalf("expected validation error")
	}

	details := Details(err)
	if details["name"] != "max=5" {
		t.Fatalf("unexpected name detail %q", details["name"])
	}
	if details["email"] != "email" {
		t.Fatalf("unexpected email detail %q", details["email"])
	}
}

func TestValidStructPasses(t *testing.T) {
	if err := New().Struct(sample{Name: "Ravi"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if Details(nil) != nil {
		t.Fatalf("expected nil details")
	}
}
