package health

import (
	"context"
	"fmt"

	"github.com/devlane/offerwatch/internal/source/xrplws"
)

// FeedChecker reports whether all configured feeds hold live subscriptions.
type FeedChecker struct {
	clients map[string]*xrplws.Client
}

// NewFeedChecker creates a checker over the running feed clients.
func NewFeedChecker(clients map[string]*xrplws.Client) *FeedChecker {
	return &FeedChecker{clients: clients}
}

// Ping fails if any feed has lost its subscription. Reconnects in progress
// count as unhealthy so orchestrators can see a flapping feed.
func (c *FeedChecker) Ping(ctx context.Context) error {
	var lastErr error
	for id, cli := range c.clients {
		if !cli.Connected() {
			lastErr = fmt.Errorf("feed %s: not subscribed", id)
		}
	}
	return lastErr
}
