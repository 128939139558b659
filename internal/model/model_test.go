package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPublicUserHasNoSecrets(t *testing.T) {
	admin := AdminUser{
		Email:        "admin@example.com",
		Name:         "Admin User",
		Role:         RoleSuperAdmin,
		CreatedAt:    time.Now(),
		PasswordSalt: "s@lt",
		PasswordHash: "somehash",
	}

	b, err := json.Marshal(admin.Public())
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	for _, key := range []string{"password_salt", "password_hash"} {
		if _, ok := m[key]; ok {
			t.Errorf("%s should not appear in public JSON", key)
		}
	}
	if m["email"] != "admin@example.com" {
		t.Errorf("email = %v, want admin@example.com", m["email"])
	}
	if m["role"] != "super-admin" {
		t.Errorf("role = %v, want super-admin", m["role"])
	}
}

func TestStoredAdminKeepsSecrets(t *testing.T) {
	admin := AdminUser{Email: "a@b.co", PasswordSalt: "salt", PasswordHash: "hash"}
	b, err := json.Marshal(admin)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var back AdminUser
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if back.PasswordSalt != "salt" || back.PasswordHash != "hash" {
		t.Errorf("stored form lost secrets: %+v", back)
	}
}

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleAdmin, true},
		{RoleSuperAdmin, true},
		{"", false},
		{"owner", false},
		{"Admin", false},
	}
	for _, tt := range tests {
		if got := tt.role.Valid(); got != tt.want {
			t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestSessionExpiresAt(t *testing.T) {
	created := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	s := AdminSession{CreatedAt: created}
	want := created.Add(120 * time.Minute)
	if got := s.ExpiresAt(120 * time.Minute); !got.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", got, want)
	}
}

func TestCreativeRequestRequiredFields(t *testing.T) {
	full := CreativeRequest{
		Email:          "a@b.co",
		TaskName:       "Launch",
		Client:         "ACME",
		CreativeType:   "Carousel",
		Briefing:       "brief",
		Intention:      "Sales",
		ToneOfVoice:    "Neutral",
		AwarenessLevel: "Unaware",
		CTA:            "Buy now",
		StartDate:      "2025-02-01",
	}
	if missing := full.RequiredFields(); len(missing) != 0 {
		t.Errorf("expected no missing fields, got %v", missing)
	}

	partial := full
	partial.Client = ""
	partial.CTA = ""
	missing := partial.RequiredFields()
	if len(missing) != 2 || missing[0] != "client" || missing[1] != "cta" {
		t.Errorf("missing = %v, want [client cta]", missing)
	}
}

func TestErrorResponseJSON(t *testing.T) {
	er := ErrorResponse{
		Error: ErrorDetail{
			Code:    404,
			Message: "Resource not found",
			Context: map[string]interface{}{
				"list": "clients",
			},
		},
	}

	b, err := json.Marshal(er)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	errObj, ok := m["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected 'error' key to be an object")
	}
	if errObj["code"] != float64(404) {
		t.Errorf("error.code = %v, want 404", errObj["code"])
	}
	ctx, ok := errObj["context"].(map[string]interface{})
	if !ok {
		t.Fatal("expected 'context' key to be an object")
	}
	if ctx["list"] != "clients" {
		t.Errorf("error.context.list = %v, want %q", ctx["list"], "clients")
	}

	// Context should be omitted when nil
	b2, err := json.Marshal(ErrorResponse{Error: ErrorDetail{Code: 500, Message: "Internal error"}})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	var m2 map[string]interface{}
	if err := json.Unmarshal(b2, &m2); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	errObj2 := m2["error"].(map[string]interface{})
	if _, ok := errObj2["context"]; ok {
		t.Error("context should be omitted when nil")
	}
}
