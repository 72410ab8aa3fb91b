package feedclient

import "encoding/json"

// Event types emitted on the store's event feed.
const (
	// EventMutationSettled: a toggle drained to its final state and the
	// server agrees.
	EventMutationSettled = "mutation_settled"
	// EventMutationFailed: the server rejected a toggle and the local state
	// was reverted to the last confirmed value.
	EventMutationFailed = "mutation_failed"
	// EventReactionApplied: a remote post_reaction_updated broadcast was
	// processed. Components rendering the post outside this store should
	// refresh from the event payload.
	EventReactionApplied = "reaction_applied"
)

// Event describes one change on the store's event feed.
type Event struct {
	Type       string
	PostID     uint
	Kind       string // "like" or "save" for mutation events
	State      bool   // final toggle state for mutation events
	LikesCount int    // server count for reaction events
	Err        error  // set on EventMutationFailed
}

// wireEvent mirrors the server's websocket broadcast envelope.
type wireEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type reactionPayload struct {
	PostID     uint `json:"post_id"`
	LikesCount int  `json:"likes_count"`
}

// HandleMessage feeds one raw websocket message into the store. Unknown
// event types are ignored so the server can grow its vocabulary freely.
func (s *Store) HandleMessage(data []byte) error {
	var ev wireEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}

	switch ev.Type {
	case "post_reaction_updated":
		var payload reactionPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return err
		}
		s.applyReaction(payload.PostID, payload.LikesCount)
	}
	return nil
}

// applyReaction applies a remote count update. While a local toggle for
// the post is still draining, the local intent wins; the drain adopts the
// server's count on its own once it settles.
func (s *Store) applyReaction(postID uint, likesCount int) {
	s.mu.Lock()
	_, likePending := s.pending[mutationKey{postID: postID, kind: kindLike}]
	if !likePending {
		if post, ok := s.postLocked(postID); ok {
			post.LikesCount = likesCount
		}
	}
	s.mu.Unlock()

	s.emit(Event{
		Type:       EventReactionApplied,
		PostID:     postID,
		LikesCount: likesCount,
	})
}
