// Package presence tracks which users currently hold a live connection and
// delivers best-effort notifications to them. Nothing here is durable: the
// registry is a process-local delivery optimization, never a source of truth.
package presence

import (
	"log"
	"sync"

	"cinematch/backend/internal/models"
)

// Conn is a live connection handle capable of receiving events. The
// websocket gateway implements it; tests substitute their own.
type Conn interface {
	UserID() string
	// Deliver enqueues one event for the connection. It must not block
	// indefinitely; a full or closed connection returns an error.
	Deliver(ev models.Event) error
}

// Registry maps user IDs to their live connection. It is constructed once
// at process start and injected into the gateway and the dispatcher; it is
// deliberately not package-level state so tests can run isolated registries.
//
// Concurrency: many connect/disconnect events interleave with many delivery
// lookups, so entries live in a sync.Map rather than behind one big mutex.
type Registry struct {
	conns sync.Map // userID -> Conn
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Connect registers the connection for the user. Last connection wins: a
// user connecting from a second device silently replaces the first entry.
func (r *Registry) Connect(c Conn) {
	r.conns.Store(c.UserID(), c)
}

// Disconnect removes the user's entry only if it still points at this exact
// connection. A late disconnect from an old connection must not evict the
// entry a newer reconnect has already stored.
func (r *Registry) Disconnect(c Conn) bool {
	return r.conns.CompareAndDelete(c.UserID(), c)
}

// Lookup returns the user's live connection, if any.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	v, ok := r.conns.Load(userID)
	if !ok {
		return nil, false
	}
	return v.(Conn), true
}

// Dispatcher pushes events to connected users. Delivery is best effort by
// contract: the durable state transition that triggered the notification
// has already committed, so failures here are logged and swallowed.
type Dispatcher struct {
	Registry *Registry
}

func NewDispatcher(r *Registry) *Dispatcher {
	return &Dispatcher{Registry: r}
}

// Notify delivers the event to the user's live connection if one exists,
// and is a no-op otherwise.
func (d *Dispatcher) Notify(userID string, ev models.Event) {
	conn, ok := d.Registry.Lookup(userID)
	if !ok {
		return
	}
	if err := conn.Deliver(ev); err != nil {
		log.Printf("WARNING: dropped %s notification for user %s: %v", ev.Type, userID, err)
	}
}
