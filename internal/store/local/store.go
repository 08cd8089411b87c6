// Package local implements the anonymous, quota-limited bookmark store.
// Each guest partition is one ordered JSON blob under a fixed key.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sohee-an/smart-bookmark-app/internal/bookmark"
	"github.com/sohee-an/smart-bookmark-app/internal/quota"
	"github.com/sohee-an/smart-bookmark-app/internal/store/kv"
)

const guestKeyPrefix = "GUEST_BOOKMARK:"

// Store implements bookmark.Repository for anonymous identities.
type Store struct {
	kv     kv.Store
	guard  *quota.Guard
	idGen  bookmark.IDGenerator
	clock  bookmark.Clock
	logger *zap.Logger
}

// New constructs a Store.
func New(kvStore kv.Store, guard *quota.Guard, idGen bookmark.IDGenerator, clock bookmark.Clock, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		kv:     kvStore,
		guard:  guard,
		idGen:  idGen,
		clock:  clock,
		logger: logger,
	}
}

func guestKey(owner bookmark.Identity) (string, error) {
	if owner.Key() == "" {
		return "", errors.New("guest identity is required")
	}
	return guestKeyPrefix + owner.Key(), nil
}

func (s *Store) load(ctx context.Context, owner bookmark.Identity) ([]bookmark.Bookmark, error) {
	key, err := guestKey(owner)
	if err != nil {
		return nil, err
	}
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNoKey) {
			return []bookmark.Bookmark{}, nil
		}
		return nil, fmt.Errorf("load guest bookmarks: %w", err)
	}
	var list []bookmark.Bookmark
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode guest bookmarks: %w", err)
	}
	return list, nil
}

func (s *Store) persist(ctx context.Context, owner bookmark.Identity, list []bookmark.Bookmark) error {
	key, err := guestKey(owner)
	if err != nil {
		return err
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode guest bookmarks: %w", err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("persist guest bookmarks: %w", err)
	}
	return nil
}

// Save creates a new record at the head of the partition. The quota
// check runs first; a rejection writes nothing.
func (s *Store) Save(ctx context.Context, req bookmark.CreateRequest) (bookmark.Bookmark, error) {
	current, err := s.load(ctx, req.Owner)
	if err != nil {
		return bookmark.Bookmark{}, err
	}
	if err := s.guard.Check(len(current)); err != nil {
		s.logger.Info("guest save rejected by quota",
			zap.String("guest_id", req.Owner.Key()),
			zap.Int("count", len(current)),
		)
		return bookmark.Bookmark{}, err
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return bookmark.Bookmark{}, fmt.Errorf("generate bookmark id: %w", err)
	}
	now := s.clock.Now()
	created := bookmark.Bookmark{
		ID:        id,
		URL:       req.URL,
		UserMemo:  req.UserMemo,
		Tags:      []string{},
		Status:    bookmark.StatusUnread,
		AIStatus:  bookmark.AIStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
		GuestID:   req.Owner.GuestID,
	}

	// Newest first keeps the blob ordered by createdAt descending.
	list := append([]bookmark.Bookmark{created}, current...)
	if err := s.persist(ctx, req.Owner, list); err != nil {
		return bookmark.Bookmark{}, err
	}
	return created, nil
}

// FindAll returns the partition, optionally narrowed by tag and status.
// SearchQuery is a remote-backend feature and is ignored here.
func (s *Store) FindAll(ctx context.Context, owner bookmark.Identity, filter bookmark.Filter) ([]bookmark.Bookmark, error) {
	list, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if filter.Tag == "" && filter.Status == "" {
		return list, nil
	}
	out := make([]bookmark.Bookmark, 0, len(list))
	for _, b := range list {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.Tag != "" && !hasTag(b.Tags, filter.Tag) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// FindByID returns the bookmark with the given id or ErrNotFound.
func (s *Store) FindByID(ctx context.Context, owner bookmark.Identity, id string) (bookmark.Bookmark, error) {
	list, err := s.load(ctx, owner)
	if err != nil {
		return bookmark.Bookmark{}, err
	}
	for _, b := range list {
		if b.ID == id {
			return b, nil
		}
	}
	return bookmark.Bookmark{}, bookmark.ErrNotFound
}

// Delete removes the bookmark with the given id. Removing an id that
// does not exist leaves the partition unchanged without error.
func (s *Store) Delete(ctx context.Context, owner bookmark.Identity, id string) error {
	list, err := s.load(ctx, owner)
	if err != nil {
		return err
	}
	out := make([]bookmark.Bookmark, 0, len(list))
	for _, b := range list {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return s.persist(ctx, owner, out)
}

// RemoveAll clears the partition.
func (s *Store) RemoveAll(ctx context.Context, owner bookmark.Identity) error {
	return s.persist(ctx, owner, []bookmark.Bookmark{})
}

// Count returns the number of bookmarks in the partition.
func (s *Store) Count(ctx context.Context, owner bookmark.Identity) (int, error) {
	list, err := s.load(ctx, owner)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// Update merges the provided fields into an existing bookmark and
// refreshes updatedAt. A missing id fails with ErrNotFound and does not
// alter the stored sequence.
func (s *Store) Update(ctx context.Context, owner bookmark.Identity, id string, update bookmark.Update) error {
	list, err := s.load(ctx, owner)
	if err != nil {
		return err
	}
	idx := -1
	for i, b := range list {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return bookmark.ErrNotFound
	}

	b := list[idx]
	if update.Title != nil {
		b.Title = *update.Title
	}
	if update.Summary != nil {
		b.Summary = *update.Summary
	}
	if update.Tags != nil {
		b.Tags = update.Tags
	}
	if update.AIStatus != nil {
		b.AIStatus = *update.AIStatus
	}
	b.UpdatedAt = s.clock.Now()
	list[idx] = b

	return s.persist(ctx, owner, list)
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
