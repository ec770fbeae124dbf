package feed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSeed = `
team:
  - id: "u-praveen"
    first_name: "Praveen"
    last_name: "Kumar"
    email: "pk@studio.test"
  - first_name: "Alice"
    last_name: "Smith"
    email: "alice.smith@studio.test"

clients:
  - name: "A24"
    projects:
      - name: "Marty Supreme"
      - name: "Past Lives"
        status: "archived"
        description: "Released"
  - name: "Neon"

guilds:
  - "DGA"
  - "SAG"
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSeeder_Run(t *testing.T) {
	store := &MockStore{}
	seeder := NewSeeder(store, store, store, store)

	if err := seeder.Run(context.Background(), writeSeed(t, testSeed)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(store.users) != 2 {
		t.Fatalf("Expected 2 team members, got %d", len(store.users))
	}
	if store.users[0].ID != "u-praveen" {
		t.Errorf("Expected explicit id 'u-praveen', got '%s'", store.users[0].ID)
	}
	if store.users[1].ID == "" {
		t.Error("Expected a generated id for members without one")
	}

	if len(store.clients) != 2 {
		t.Errorf("Expected 2 clients, got %d", len(store.clients))
	}
	if len(store.projects) != 2 {
		t.Fatalf("Expected 2 projects, got %d", len(store.projects))
	}
	if store.projects[0].Status != "active" {
		t.Errorf("Expected default status 'active', got '%s'", store.projects[0].Status)
	}
	if store.projects[1].Status != "archived" {
		t.Errorf("Expected status 'archived', got '%s'", store.projects[1].Status)
	}
	if store.projects[0].ClientID != store.clients[0].ID {
		t.Errorf("Expected project under client %d, got %d", store.clients[0].ID, store.projects[0].ClientID)
	}
	if len(store.guilds) != 2 {
		t.Errorf("Expected 2 guilds, got %d", len(store.guilds))
	}
}

func TestSeeder_Run_CatalogOnlyOnce(t *testing.T) {
	store := &MockStore{}
	seeder := NewSeeder(store, store, store, store)
	path := writeSeed(t, testSeed)

	for i := 0; i < 2; i++ {
		if err := seeder.Run(context.Background(), path); err != nil {
			t.Fatalf("Run %d: expected no error, got: %v", i, err)
		}
	}

	if len(store.users) != 2 {
		t.Errorf("Expected roster upserts to keep 2 members, got %d", len(store.users))
	}
	if len(store.clients) != 2 {
		t.Errorf("Expected catalog to be seeded once, got %d clients", len(store.clients))
	}
	if store.createGuildCalls != 2 {
		t.Errorf("Expected 2 guild creations, got %d", store.createGuildCalls)
	}
}

func TestSeeder_Run_MissingFile(t *testing.T) {
	store := &MockStore{}
	seeder := NewSeeder(store, store, store, store)

	if err := seeder.Run(context.Background(), filepath.Join(t.TempDir(), "absent.yml")); err != nil {
		t.Errorf("Expected missing seed file to be skipped, got: %v", err)
	}
	if err := seeder.Run(context.Background(), ""); err != nil {
		t.Errorf("Expected empty path to be skipped, got: %v", err)
	}
}

func TestSeeder_LoadSeed_Invalid(t *testing.T) {
	seeder := NewSeeder(nil, nil, nil, nil)

	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"bad yaml", "team: [", "failed to parse YAML"},
		{"nameless member", "team:\n  - last_name: Smith\n", "needs a first name or an email"},
		{"duplicate member", "team:\n  - email: a@x.test\n  - email: A@x.test\n", "duplicate team member id"},
		{"blank client", "clients:\n  - name: \" \"\n", "client name is required"},
		{"blank project", "clients:\n  - name: A24\n    projects:\n      - name: \"\"\n", "project name is required"},
		{"blank guild", "guilds:\n  - \"\"\n", "guild name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := seeder.LoadSeed(writeSeed(t, tt.content))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("Expected error containing '%s', got: %v", tt.errText, err)
			}
		})
	}
}

func TestMemberID_Stable(t *testing.T) {
	a := MemberID(SeedMember{FirstName: "Alice", Email: "Alice.Smith@studio.test"})
	b := MemberID(SeedMember{FirstName: "Alicia", Email: "alice.smith@studio.test "})
	if a != b {
		t.Errorf("Expected ids derived from the email to match, got %s and %s", a, b)
	}

	c := MemberID(SeedMember{FirstName: "Bob", LastName: "Stone"})
	if c == a || c == "" {
		t.Errorf("Expected a distinct id for a different member, got %s", c)
	}
}
