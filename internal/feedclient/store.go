// Package feedclient is an embeddable client for the feed API: an ordered
// in-memory store fed by cursor pagination, plus an optimistic mutation
// layer for like/save toggles that reconciles against the server.
package feedclient

import (
	"context"
	"errors"
	"sync"

	"instakilo/internal/models"
)

// ErrStalePage is returned by LoadMore when the response arrived after a
// Reset superseded the request. The page has been discarded, not appended.
var ErrStalePage = errors.New("stale feed page discarded")

// Store holds one ordered view of the feed. Posts are appended by
// pagination and mutated in place by toggles; duplicate ids are never
// appended twice.
type Store struct {
	api   API
	limit int

	mu         sync.Mutex
	posts      []*models.Post
	index      map[uint]int
	cursor     string
	hasMore    bool
	loaded     bool
	fetching   bool
	generation uint64
	pending    map[mutationKey]*pendingMutation

	events chan Event
}

func NewStore(api API, pageLimit int) *Store {
	if pageLimit <= 0 {
		pageLimit = models.DefaultFeedLimit
	}
	return &Store{
		api:     api,
		limit:   pageLimit,
		index:   make(map[uint]int),
		hasMore: true,
		pending: make(map[mutationKey]*pendingMutation),
		events:  make(chan Event, 64),
	}
}

// Events is the store's event feed: settlements, reverts and remote
// reaction updates. Slow consumers lose events rather than block mutations.
func (s *Store) Events() <-chan Event {
	return s.events
}

// AppendPage appends posts in order, skipping any id already present.
// Duplicate delivery (re-fetch after reconnect, overlapping pages) is
// therefore harmless.
func (s *Store) AppendPage(posts []*models.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(posts)
}

func (s *Store) appendLocked(posts []*models.Post) {
	for _, p := range posts {
		if _, exists := s.index[p.ID]; exists {
			continue
		}
		s.index[p.ID] = len(s.posts)
		s.posts = append(s.posts, p)
	}
}

// LoadMore fetches the next page using the held cursor and appends it.
// It is a no-op once the feed is exhausted or while a fetch is already
// running. A page that resolves after Reset is discarded with ErrStalePage.
func (s *Store) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.fetching || (s.loaded && !s.hasMore) {
		s.mu.Unlock()
		return nil
	}
	s.fetching = true
	gen := s.generation
	cursor := s.cursor
	s.mu.Unlock()

	page, err := s.api.QueryFeed(ctx, cursor, s.limit)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		// A Reset superseded this request; the newer view wins.
		return ErrStalePage
	}
	s.fetching = false
	if err != nil {
		return err
	}

	s.appendLocked(page.Posts)
	s.cursor = page.NextCursor
	s.hasMore = page.HasMore
	s.loaded = true
	return nil
}

// Reset empties the store and invalidates any fetch still in flight.
// Pending toggle mutations keep draining; they are keyed by post id, not
// by store position.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.posts = nil
	s.index = make(map[uint]int)
	s.cursor = ""
	s.hasMore = true
	s.loaded = false
	s.fetching = false
}

// HasMore reports whether another LoadMore could return posts.
func (s *Store) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.loaded || s.hasMore
}

// Len returns the number of posts currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

// Posts returns a snapshot copy of the ordered feed.
func (s *Store) Posts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Post, len(s.posts))
	for i, p := range s.posts {
		out[i] = *p
	}
	return out
}

// Post returns a snapshot of one post by id.
func (s *Store) Post(id uint) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return models.Post{}, false
	}
	return *s.posts[i], true
}

func (s *Store) postLocked(id uint) (*models.Post, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.posts[i], true
}

func (s *Store) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		// Event feed is advisory; dropping beats blocking a mutation.
	}
}
