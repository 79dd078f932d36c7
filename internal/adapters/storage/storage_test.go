package storage

import "testing"

func TestObjectKey(t *testing.T) {
	cases := []struct {
		folder, name, want string
	}{
		{"org/user", "me.PNG", "org/user/me_abc.png"},
		{"org/user", "../../etc/passwd", "org/user/passwd_abc"},
		{"org/user", `C:\pics\face.jpg`, "org/user/face_abc.jpg"},
		{"org/user", "", "org/user/file_abc"},
	}
	for _, tc := range cases {
		if got := ObjectKey(tc.folder, tc.name, "abc"); got != tc.want {
			t.Errorf("ObjectKey(%q, %q) = %q, want %q", tc.folder, tc.name, got, tc.want)
		}
	}
}

func TestValidateImage(t *testing.T) {
	if err := ValidateImage("image/png; charset=binary", 10, 100); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := ValidateImage("application/pdf", 10, 100); err == nil {
		t.Fatalf("expected pdf to be rejected")
	}
	if err := ValidateImage("image/png", 0, 100); err == nil {
		t.Fatalf("expected empty file to be rejected")
	}
	if err := ValidateImage("image/png", 101, 100); err == nil {
		t.Fatalf("expected oversize file to be rejected")
	}
}
