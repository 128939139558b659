package options

import (
	"context"
	"errors"
	"testing"

	"github.com/briefdesk/briefdesk/internal/config"
)

func newTestStore(t *testing.T) (*Store, *config.Store) {
	t.Helper()
	kv, err := config.NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return NewStore(kv, nil), kv
}

func TestGetSeedsDefaults(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			items, err := s.Get(ctx, name)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			want := Defaults(name)
			if len(items) != len(want) || len(items) == 0 {
				t.Fatalf("got %d items, want %d", len(items), len(want))
			}
			if items[0] != want[0] {
				t.Errorf("first item = %q, want %q", items[0], want[0])
			}
			// The seed is persisted on first access.
			if _, err := kv.Get(ctx, StorageKey(name)); err != nil {
				t.Errorf("expected seeded key %s: %v", StorageKey(name), err)
			}
		})
	}
}

func TestGetUnknownList(t *testing.T) {
	s, _ := newTestStore(t)
	if _, err := s.Get(context.Background(), "colors"); !errors.Is(err, ErrUnknownList) {
		t.Fatalf("expected ErrUnknownList, got %v", err)
	}
}

func TestGetCorruptFallsBackToDefaults(t *testing.T) {
	s, kv := newTestStore(t)
	ctx := context.Background()

	if err := kv.Set(ctx, StorageKey(ListIntentions), "%%%"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	items, err := s.Get(ctx, ListIntentions)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(items) != 3 || items[0] != "Aumento de vendas" {
		t.Errorf("items = %v", items)
	}
}

func TestSet(t *testing.T) {
	tests := []struct {
		name    string
		list    string
		items   []string
		want    []string
		wantErr error
	}{
		{"trims", ListClients, []string{"  ACME ", "Globex"}, []string{"ACME", "Globex"}, nil},
		{"empty list allowed", ListTriggers, []string{}, []string{}, nil},
		{"empty item", ListClients, []string{"ACME", "  "}, nil, ErrInvalidItem},
		{"duplicate", ListClients, []string{"ACME", " ACME"}, nil, ErrDuplicateItem},
		{"bad email", ListEmails, []string{"not-an-email"}, nil, ErrInvalidItem},
		{"good email", ListEmails, []string{"a@b.co"}, []string{"a@b.co"}, nil},
		{"unknown list", "colors", []string{"red"}, nil, ErrUnknownList},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			ctx := context.Background()

			got, err := s.Set(ctx, tt.list, tt.items)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			stored, err := s.Get(ctx, tt.list)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] || stored[i] != tt.want[i] {
					t.Errorf("item %d: got %q stored %q, want %q", i, got[i], stored[i], tt.want[i])
				}
			}
		})
	}
}

func TestSetRejectedLeavesListUnchanged(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Set(ctx, ListClients, []string{"ACME"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := s.Set(ctx, ListClients, []string{"X", "X"}); err == nil {
		t.Fatal("expected duplicate error")
	}
	items, _ := s.Get(ctx, ListClients)
	if len(items) != 1 || items[0] != "ACME" {
		t.Errorf("items = %v, want [ACME]", items)
	}
}

func TestAddRemoveReset(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	before, err := s.Get(ctx, ListIntentions)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	items, err := s.Add(ctx, ListIntentions, " Retenção ")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(items) != len(before)+1 || items[len(items)-1] != "Retenção" {
		t.Errorf("after add = %v", items)
	}

	if _, err := s.Add(ctx, ListIntentions, "Retenção"); !errors.Is(err, ErrDuplicateItem) {
		t.Errorf("expected ErrDuplicateItem, got %v", err)
	}

	items, err = s.Remove(ctx, ListIntentions, "Retenção")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(items) != len(before) {
		t.Errorf("after remove = %v", items)
	}

	if _, err := s.Remove(ctx, ListIntentions, "Retenção"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	if _, err := s.Set(ctx, ListIntentions, []string{"Only"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	items, err = s.Reset(ctx, ListIntentions)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(items) != len(Defaults(ListIntentions)) {
		t.Errorf("after reset = %v", items)
	}
}

func TestAll(t *testing.T) {
	s, _ := newTestStore(t)
	lists, err := s.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(lists) != len(Names()) {
		t.Fatalf("got %d lists, want %d", len(lists), len(Names()))
	}
	for i, l := range lists {
		if l.Name != Names()[i] {
			t.Errorf("list %d = %q, want %q", i, l.Name, Names()[i])
		}
	}
}

func TestDefaultsReturnsCopy(t *testing.T) {
	d := Defaults(ListTones)
	d[0] = "changed"
	if Defaults(ListTones)[0] == "changed" {
		t.Error("Defaults must return a copy")
	}
	if Defaults("colors") != nil {
		t.Error("unknown list should have no defaults")
	}
}
