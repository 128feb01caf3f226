package hub

import "log/slog"

// Router fans one encoded frame out to every current member of a room.
// Delivery is best-effort and independent per recipient: a member that has
// already disconnected is skipped, and a member whose buffer is full loses
// this one frame without affecting delivery to anyone else. Publish never
// blocks on a slow consumer and never returns an error.
type Router struct {
	registry   *Registry
	membership *Membership
	logger     *slog.Logger
}

// NewRouter creates a Router over the given registry and membership.
func NewRouter(registry *Registry, membership *Membership, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		registry:   registry,
		membership: membership,
		logger:     logger,
	}
}

// Publish delivers frame to every member of room except exclude (the sender
// is not echoed to itself). Publishing to an empty or unknown room is a no-op.
func (r *Router) Publish(room, exclude string, frame []byte) {
	for _, id := range r.membership.MembersOf(room) {
		if id == exclude {
			continue
		}
		ch, ok := r.registry.Lookup(id)
		if !ok {
			// Disconnected between snapshot and delivery.
			continue
		}
		select {
		case ch <- frame:
		default:
			r.logger.Warn("recipient buffer full, dropping frame", "room", room, "session", id)
		}
	}
}
