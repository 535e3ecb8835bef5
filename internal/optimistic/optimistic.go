// Package optimistic centralizes the apply-then-confirm pattern used for
// completion and visibility toggles: flip the local value immediately,
// confirm against the server in the background, and reconcile or revert
// when the response lands. The same rules apply to every resource that
// toggles a flag, so the clobber protection lives in one place instead of
// being repeated per screen.
package optimistic

// BoolField describes how to read and write one boolean field on an
// entity. Set is expected to keep derived fields in step (for example a
// goal's status moving with its completion flag).
type BoolField[E any] struct {
	Get func(*E) bool
	Set func(*E, bool)
}

// Toggle is one in-flight optimistic flip. Begin it, fire the network
// call, then Resolve it with the outcome. A Toggle is owned by a single
// update loop; it is not safe for concurrent use.
type Toggle[E any] struct {
	entity   *E
	field    BoolField[E]
	prev     bool
	applied  bool
	resolved bool
}

// Begin flips the field locally before any network work starts and
// records what it wrote so the resolution can tell whether it is stale.
func Begin[E any](entity *E, field BoolField[E]) *Toggle[E] {
	prev := field.Get(entity)
	t := &Toggle[E]{entity: entity, field: field, prev: prev, applied: !prev}
	field.Set(entity, !prev)
	return t
}

// Applied returns the value this toggle wrote locally
func (t *Toggle[E]) Applied() bool {
	return t.applied
}

// Resolve reconciles local state with the server outcome and returns err
// unchanged so the caller can surface it. On success the server's copy
// replaces the local guess; on failure the field reverts to its
// pre-toggle value. Neither happens if the local field no longer holds
// the value this toggle set: a newer toggle has taken over and a stale
// resolution must not clobber it.
func (t *Toggle[E]) Resolve(server *E, err error) error {
	if t.resolved {
		return err
	}
	t.resolved = true

	if t.field.Get(t.entity) != t.applied {
		return err
	}
	if err != nil {
		t.field.Set(t.entity, t.prev)
		return err
	}
	if server != nil {
		*t.entity = *server
	}
	return nil
}
