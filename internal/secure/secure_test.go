package secure

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestGenerateSalt(t *testing.T) {
	salt, err := GenerateSalt(DefaultSaltLength)
	if err != nil {
		t.Fatalf("GenerateSalt: %v", err)
	}
	if len(salt) != DefaultSaltLength {
		t.Errorf("len = %d, want %d", len(salt), DefaultSaltLength)
	}
	for _, c := range salt {
		if !strings.ContainsRune(saltAlphabet, c) {
			t.Errorf("unexpected character %q in salt", c)
		}
	}

	other, _ := GenerateSalt(DefaultSaltLength)
	if other == salt {
		t.Error("two salts should not collide")
	}

	if _, err := GenerateSalt(0); err == nil {
		t.Error("expected error for zero length")
	}
}

func TestHashPassword(t *testing.T) {
	salt := "0123456789abcdef"

	h1 := HashPassword("correct horse", salt)
	h2 := HashPassword("correct horse", salt)
	if h1 != h2 {
		t.Error("hash should be deterministic for the same password and salt")
	}
	if h1 == HashPassword("correct horsf", salt) {
		t.Error("different passwords should hash differently")
	}
	if h1 == HashPassword("correct horse", "fedcba9876543210") {
		t.Error("different salts should hash differently")
	}
	if strings.Contains(h1, "correct") {
		t.Error("hash must not reveal the password")
	}
}

func TestVerifyPassword(t *testing.T) {
	salt, _ := GenerateSalt(DefaultSaltLength)
	hash := HashPassword("s3cret!", salt)

	if !VerifyPassword("s3cret!", salt, hash) {
		t.Error("expected correct password to verify")
	}
	if VerifyPassword("s3cret", salt, hash) {
		t.Error("expected wrong password to fail")
	}
	if VerifyPassword("s3cret!", salt+"x", hash) {
		t.Error("expected wrong salt to fail")
	}
}

func TestObfuscateRoundTrip(t *testing.T) {
	type record struct {
		Email string    `json:"email"`
		Tags  []string  `json:"tags"`
		At    time.Time `json:"at"`
	}
	in := record{Email: "a@b.co", Tags: []string{"x", "y"}, At: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)}

	blob, err := Obfuscate(in)
	if err != nil {
		t.Fatalf("Obfuscate: %v", err)
	}
	if strings.Contains(blob, "a@b.co") {
		t.Error("blob should not contain plain JSON")
	}

	var out record
	if err := Deobfuscate(blob, &out); err != nil {
		t.Fatalf("Deobfuscate: %v", err)
	}
	if out.Email != in.Email || len(out.Tags) != 2 || !out.At.Equal(in.At) {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestDeobfuscateErrors(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"not json", "bm90IGpzb24="}, // "not json"
		{"wrong shape", "eyJhIjoxfQ=="}, // {"a":1} into a slice
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out []string
			err := Deobfuscate(tt.blob, &out)
			if !errors.Is(err, ErrDecode) {
				t.Errorf("expected ErrDecode, got %v", err)
			}
		})
	}
}

func TestGenerateSessionToken(t *testing.T) {
	tok, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if len(tok) != 2*SessionTokenBytes {
		t.Errorf("len = %d, want %d", len(tok), 2*SessionTokenBytes)
	}
	if _, err := hex.DecodeString(tok); err != nil {
		t.Errorf("token is not hex: %v", err)
	}
	tok2, _ := GenerateSessionToken()
	if tok == tok2 {
		t.Error("tokens should be unique")
	}
}

func TestIsTokenExpired(t *testing.T) {
	created := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	window := 120 * time.Minute

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"just created", created, false},
		{"inside window", created.Add(119 * time.Minute), false},
		{"at boundary", created.Add(window), false},
		{"one ms past", created.Add(window + time.Millisecond), true},
		{"121 minutes", created.Add(121 * time.Minute), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTokenExpired(created, window, tt.now); got != tt.want {
				t.Errorf("IsTokenExpired = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		want     Strength
	}{
		{"Ab1!", StrengthWeak},
		{"abcdefgh", StrengthWeak},
		{"abcdEFGH", StrengthWeak},
		{"abcDEF12", StrengthMedium},
		{"abcDEF12!", StrengthStrong},
	}
	for _, tt := range tests {
		if got := PasswordStrength(tt.password); got != tt.want {
			t.Errorf("PasswordStrength(%q) = %q, want %q", tt.password, got, tt.want)
		}
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last@company.com.br"}
	invalid := []string{"", "plain", "a@b", "a b@c.d", "@b.co"}
	for _, s := range valid {
		if !ValidEmail(s) {
			t.Errorf("ValidEmail(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if ValidEmail(s) {
			t.Errorf("ValidEmail(%q) = true, want false", s)
		}
	}
}
