package otp

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"+14155550123", "+14155550123", true},
		{"+1 (415) 555-0123", "+14155550123", true},
		{"  +55 11 91234-5678 ", "+5511912345678", true},
		{"14155550123", "", false},
		{"+0123456789", "", false},
		{"+1", "", false},
		{"+1415555abc", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, err := NormalizePhone(c.in)
		if c.ok && err != nil {
			t.Fatalf("NormalizePhone(%q) failed: %v", c.in, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("NormalizePhone(%q) should fail, got %q", c.in, got)
		}
		if c.ok && got != c.want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := NewCode()
		if err != nil {
			t.Fatalf("NewCode failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6-digit code, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("expected digits only, got %q", code)
			}
		}
	}
}
