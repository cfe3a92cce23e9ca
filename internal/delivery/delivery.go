// Package delivery defines the contract shared by all transport servers.
package delivery

import "context"

// Delivery is a transport server that can be started by the application
// entrypoint. Implementations block inside Serve until the server stops.
type Delivery interface {
	Serve(ctx context.Context) error
}
