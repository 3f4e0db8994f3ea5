package accounts

import (
	"testing"
)

func TestUserEnsureStatusDefaultsToActive(t *testing.T) {
	u := &User{}

	u.EnsureStatus()

	if u.Status != UserStatusActive {
		t.Fatalf("expected default status %q, got %q", UserStatusActive, u.Status)
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Pepe@Example.COM", "pepe@example.com"},
		{"  padded@example.com  ", "padded@example.com"},
		{"already@example.com", "already@example.com"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeEmail(tc.in); got != tc.want {
			t.Fatalf("NormalizeEmail(%q) = %q, expected %q", tc.in, got, tc.want)
		}
	}
}

func TestUserIsSocial(t *testing.T) {
	cases := []struct {
		name     string
		provider Provider
		want     bool
	}{
		{"email anchor", ProviderEmail, false},
		{"missing provider", "", false},
		{"google", ProviderGoogle, true},
		{"apple", ProviderApple, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := &User{Provider: tc.provider}
			if got := u.IsSocial(); got != tc.want {
				t.Fatalf("IsSocial with provider %q returned %t, expected %t", tc.provider, got, tc.want)
			}
		})
	}
}

func TestRoleAndProviderHelpers(t *testing.T) {
	if !IsValidRole(RoleAdmin) || !IsValidRole(RoleUser) {
		t.Fatal("predefined roles should validate")
	}
	if IsValidRole("superuser") {
		t.Fatal("unknown role should not validate")
	}

	if _, ok := ParseRole("admin"); !ok {
		t.Fatal("expected admin to parse")
	}
	if _, ok := ParseRole("root"); ok {
		t.Fatal("expected root to fail parsing")
	}

	if !IsValidProvider(ProviderFacebook) || IsValidProvider("myspace") {
		t.Fatal("provider validation mismatch")
	}

	social := GetSocialProviders()
	if len(social) != 4 {
		t.Fatalf("expected 4 social providers, got %d", len(social))
	}
	for _, p := range social {
		if p == ProviderEmail {
			t.Fatal("email anchor must not be listed as a social provider")
		}
	}
}
