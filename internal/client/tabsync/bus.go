// Package tabsync keeps the auth state of multiple tabs (client processes)
// of the same user converged through a broadcast channel with a fixed name.
//
// Two message types exist: LOGIN carries the adopted user, LOGOUT carries
// nothing. There is no ordering guarantee beyond last-message-wins per tab,
// and no reconciliation of concurrent logins/logouts beyond that.
package tabsync

import (
	"context"

	"github.com/matchpoint-app/matchpoint/internal/client/api"
)

// ChannelName is the fixed broadcast channel identifier shared by all tabs.
const ChannelName = "matchpoint-auth"

const (
	TypeLogin  = "LOGIN"
	TypeLogout = "LOGOUT"
)

// Message is one event on the channel.
type Message struct {
	Type string    `json:"type"`
	User *api.User `json:"user,omitempty"`
}

// Bus is the broadcast channel abstraction. Publish delivers to the other
// tabs; Subscribe registers a handler for messages from other tabs. Handlers
// must be idempotent: receiving a LOGOUT while already logged out is a no-op.
type Bus interface {
	Publish(ctx context.Context, msg Message) error
	Subscribe(fn func(Message)) (unsubscribe func())
	Close() error
}
