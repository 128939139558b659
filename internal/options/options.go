// Package options stores the editable option lists that populate the
// creative request form.
package options

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/briefdesk/briefdesk/internal/config"
	"github.com/briefdesk/briefdesk/internal/model"
	"github.com/briefdesk/briefdesk/internal/secure"
)

var (
	ErrUnknownList   = errors.New("unknown option list")
	ErrInvalidItem   = errors.New("invalid option item")
	ErrDuplicateItem = errors.New("duplicate option item")
	ErrItemNotFound  = errors.New("option item not found")
)

// KeyPrefix prefixes every option list storage key.
const KeyPrefix = "briefdesk_"

// StorageKey returns the storage key of list.
func StorageKey(list string) string {
	return KeyPrefix + list
}

// Store reads and writes option lists. Each list lives under its own key and
// is seeded with its defaults the first time it is read.
type Store struct {
	kv     config.KV
	logger *slog.Logger
	mu     sync.Mutex
}

// NewStore creates an option list store over kv.
func NewStore(kv config.KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger}
}

// Names returns the known list names in display order.
func Names() []string {
	out := make([]string, len(listOrder))
	copy(out, listOrder)
	return out
}

// Known reports whether list is a known option list name.
func Known(list string) bool {
	_, ok := defaults[list]
	return ok
}

// Get returns the items of list. An absent list is seeded with its defaults
// and persisted. A corrupt list reads as its defaults.
func (s *Store) Get(ctx context.Context, list string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(ctx, list)
}

func (s *Store) get(ctx context.Context, list string) ([]string, error) {
	if !Known(list) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownList, list)
	}

	var items []string
	err := config.GetObject(ctx, s.kv, StorageKey(list), &items)
	switch {
	case err == nil:
		if items == nil {
			items = []string{}
		}
		return items, nil
	case errors.Is(err, config.ErrNotFound):
		items = Defaults(list)
		if err := config.PutObject(ctx, s.kv, StorageKey(list), items); err != nil {
			return nil, fmt.Errorf("seed %s: %w", list, err)
		}
		return items, nil
	case errors.Is(err, secure.ErrDecode):
		s.logger.Warn("option list unreadable, using defaults", "list", list, "error", err)
		return Defaults(list), nil
	default:
		return nil, err
	}
}

// All returns every option list in display order.
func (s *Store) All(ctx context.Context) ([]model.OptionList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.OptionList, 0, len(listOrder))
	for _, name := range listOrder {
		items, err := s.get(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, model.OptionList{Name: name, Items: items})
	}
	return out, nil
}

// Set replaces the items of list. Items are trimmed; empty items, duplicates
// and (for the emails list) malformed addresses are rejected and nothing is
// written.
func (s *Store) Set(ctx context.Context, list string, items []string) ([]string, error) {
	if !Known(list) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownList, list)
	}
	clean, err := normalize(list, items)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := config.PutObject(ctx, s.kv, StorageKey(list), clean); err != nil {
		return nil, fmt.Errorf("save %s: %w", list, err)
	}
	return clean, nil
}

// Add appends item to list.
func (s *Store) Add(ctx context.Context, list, item string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.get(ctx, list)
	if err != nil {
		return nil, err
	}
	clean, err := normalize(list, append(items, item))
	if err != nil {
		return nil, err
	}
	if err := config.PutObject(ctx, s.kv, StorageKey(list), clean); err != nil {
		return nil, fmt.Errorf("save %s: %w", list, err)
	}
	return clean, nil
}

// Remove deletes item from list.
func (s *Store) Remove(ctx context.Context, list, item string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.get(ctx, list)
	if err != nil {
		return nil, err
	}

	item = strings.TrimSpace(item)
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if it != item {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return nil, fmt.Errorf("%w: %q", ErrItemNotFound, item)
	}
	if err := config.PutObject(ctx, s.kv, StorageKey(list), kept); err != nil {
		return nil, fmt.Errorf("save %s: %w", list, err)
	}
	return kept, nil
}

// Reset restores list to its defaults.
func (s *Store) Reset(ctx context.Context, list string) ([]string, error) {
	if !Known(list) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownList, list)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := Defaults(list)
	if err := config.PutObject(ctx, s.kv, StorageKey(list), items); err != nil {
		return nil, fmt.Errorf("reset %s: %w", list, err)
	}
	return items, nil
}

func normalize(list string, items []string) ([]string, error) {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, raw := range items {
		item := strings.TrimSpace(raw)
		if item == "" {
			return nil, fmt.Errorf("%w: empty item", ErrInvalidItem)
		}
		if list == ListEmails && !secure.ValidEmail(item) {
			return nil, fmt.Errorf("%w: %q is not a valid email", ErrInvalidItem, item)
		}
		if seen[item] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateItem, item)
		}
		seen[item] = true
		out = append(out, item)
	}
	return out, nil
}
