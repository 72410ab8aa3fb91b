package feedclient

import (
	"context"

	"instakilo/internal/models"
)

const (
	kindLike = "like"
	kindSave = "save"
)

type mutationKey struct {
	postID uint
	kind   string
}

// pendingMutation tracks one post's toggle state while calls are in flight.
// confirmed is the last server-acknowledged state; desired is what the user
// most recently asked for. The drain goroutine narrows the gap one call at
// a time, so at most one request per (post, kind) is ever outstanding.
type pendingMutation struct {
	confirmed bool
	desired   bool
}

// ToggleLike flips the local liked state immediately and reconciles with
// the server in the background. Toggling while a call is in flight
// coalesces: only the final desired state is submitted, and a toggle that
// returns to the confirmed state is dropped without a request.
func (s *Store) ToggleLike(ctx context.Context, postID uint) {
	s.toggle(ctx, postID, kindLike)
}

// ToggleSave mirrors ToggleLike against the save endpoints.
func (s *Store) ToggleSave(ctx context.Context, postID uint) {
	s.toggle(ctx, postID, kindSave)
}

func (s *Store) toggle(ctx context.Context, postID uint, kind string) {
	s.mu.Lock()
	key := mutationKey{postID: postID, kind: kind}

	p, inFlight := s.pending[key]
	var pre bool
	if inFlight {
		pre = p.desired
	} else {
		pre = s.localStateLocked(postID, kind)
	}
	next := !pre

	s.applyLocalLocked(postID, kind, next, pre)

	if inFlight {
		p.desired = next
		s.mu.Unlock()
		return
	}

	s.pending[key] = &pendingMutation{confirmed: pre, desired: next}
	s.mu.Unlock()

	go s.drain(ctx, key)
}

// drain submits server calls until the confirmed state matches the desired
// one, then settles. Server rejection reverts the local state to the last
// confirmed value.
func (s *Store) drain(ctx context.Context, key mutationKey) {
	for {
		s.mu.Lock()
		p := s.pending[key]
		if p.desired == p.confirmed {
			final := p.confirmed
			delete(s.pending, key)
			s.mu.Unlock()
			s.emit(Event{
				Type:   EventMutationSettled,
				PostID: key.postID,
				Kind:   key.kind,
				State:  final,
			})
			return
		}
		target := p.desired
		s.mu.Unlock()

		serverPost, err := s.submit(ctx, key, target)

		s.mu.Lock()
		if err != nil {
			current := p.desired
			s.applyLocalLocked(key.postID, key.kind, p.confirmed, current)
			final := p.confirmed
			delete(s.pending, key)
			s.mu.Unlock()
			s.emit(Event{
				Type:   EventMutationFailed,
				PostID: key.postID,
				Kind:   key.kind,
				State:  final,
				Err:    err,
			})
			return
		}

		p.confirmed = target
		// Adopt the server's count when no newer toggle is queued.
		if serverPost != nil && p.desired == target && key.kind == kindLike {
			if post, ok := s.postLocked(key.postID); ok {
				post.LikesCount = serverPost.LikesCount
			}
		}
		s.mu.Unlock()
	}
}

func (s *Store) submit(ctx context.Context, key mutationKey, target bool) (*models.Post, error) {
	switch {
	case key.kind == kindLike && target:
		return s.api.AddLike(ctx, key.postID)
	case key.kind == kindLike && !target:
		return s.api.RemoveLike(ctx, key.postID)
	case key.kind == kindSave && target:
		return s.api.AddSave(ctx, key.postID)
	default:
		return s.api.RemoveSave(ctx, key.postID)
	}
}

// localStateLocked reads the current toggle state. A post absent from the
// store is treated as neither liked nor saved; the server call is still
// issued and other views learn the outcome from the event feed.
func (s *Store) localStateLocked(postID uint, kind string) bool {
	post, ok := s.postLocked(postID)
	if !ok {
		return false
	}
	if kind == kindLike {
		return post.Liked
	}
	return post.Saved
}

func (s *Store) applyLocalLocked(postID uint, kind string, to, from bool) {
	if to == from {
		return
	}
	post, ok := s.postLocked(postID)
	if !ok {
		return
	}
	if kind == kindLike {
		post.Liked = to
		if to {
			post.LikesCount++
		} else if post.LikesCount > 0 {
			post.LikesCount--
		}
		return
	}
	post.Saved = to
}
