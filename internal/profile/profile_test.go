package profile

import (
	"strings"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return &Store{Dir: t.TempDir()}
}

func TestAdd_NewProfile(t *testing.T) {
	s := testStore(t)

	if err := s.Add("prod", "postgres://localhost/dw"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	profiles, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
	if profiles[0].Name != "prod" || profiles[0].ConnStr != "postgres://localhost/dw" {
		t.Errorf("profile = %+v", profiles[0])
	}
}

func TestAdd_UpdateExisting(t *testing.T) {
	s := testStore(t)

	if err := s.Add("prod", "postgres://localhost/v1"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Add("prod", "postgres://localhost/v2"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	profiles, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile after update, got %d", len(profiles))
	}
	if profiles[0].ConnStr != "postgres://localhost/v2" {
		t.Errorf("ConnStr not updated: %q", profiles[0].ConnStr)
	}
}

func TestRemove(t *testing.T) {
	s := testStore(t)

	if err := s.Add("prod", "postgres://prod/dw"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.SetDefault("prod"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if err := s.Remove("prod"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	profiles, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(profiles) != 0 {
		t.Errorf("expected no profiles, got %d", len(profiles))
	}

	// Default was cleared with the profile, so resolution must fail.
	if _, err := s.ResolveConnStr("", ""); err == nil {
		t.Error("expected error resolving after default removed")
	}
}

func TestRemove_Missing(t *testing.T) {
	s := testStore(t)
	if err := s.Remove("nope"); err == nil {
		t.Error("expected error removing unknown profile")
	}
}

func TestSetDefault_RequiresExisting(t *testing.T) {
	s := testStore(t)
	if err := s.SetDefault("nope"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestResolveConnStr(t *testing.T) {
	s := testStore(t)
	if err := s.Add("prod", "postgres://prod/dw"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Add("dev", "postgres://dev/dw"); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.SetDefault("dev"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}

	tests := []struct {
		db, profile string
		want        string
	}{
		{"postgres://explicit/dw", "", "postgres://explicit/dw"},
		{"", "prod", "postgres://prod/dw"},
		{"", "", "postgres://dev/dw"}, // stored default
	}

	for _, tt := range tests {
		got, err := s.ResolveConnStr(tt.db, tt.profile)
		if err != nil {
			t.Fatalf("ResolveConnStr(%q, %q) failed: %v", tt.db, tt.profile, err)
		}
		if got != tt.want {
			t.Errorf("ResolveConnStr(%q, %q) = %q, want %q", tt.db, tt.profile, got, tt.want)
		}
	}
}

func TestResolveConnStr_NothingConfigured(t *testing.T) {
	s := testStore(t)
	_, err := s.ResolveConnStr("", "")
	if err == nil || !strings.Contains(err.Error(), "no connection configured") {
		t.Errorf("err = %v, want no-connection message", err)
	}
}
