package finsdk

import (
	"context"
	"net/http"
)

// AddSubscription activates the premium entitlement for the current user.
// Payment is handled (mocked) before this call; paid tells the backend so.
func (c *Client) AddSubscription(ctx context.Context, paid bool) (*Ack, error) {
	return ack(c.doJSON(ctx, http.MethodPost, "/subscription/add", addSubscriptionRequest{IsPaid: paid}))
}

// CancelSubscription removes the premium entitlement.
func (c *Client) CancelSubscription(ctx context.Context) (*Ack, error) {
	return ack(c.doJSON(ctx, http.MethodPost, "/subscription/cancel", nil))
}
