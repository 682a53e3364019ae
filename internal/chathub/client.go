package chathub

import "cinematch/backend/internal/models"

// Client is the interface for any type of live connection. It abstracts the
// underlying transport so the manager and the presence registry can treat
// connections uniformly; the websocket implementation lives in ws_client.go
// and tests substitute their own.
type Client interface {
	// UserID returns the authenticated user behind the connection.
	UserID() string
	// Deliver enqueues one event for the connection without blocking.
	Deliver(ev models.Event) error
	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's outbound channel.
	Close()
}
