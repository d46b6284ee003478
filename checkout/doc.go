// Package checkout holds what the checkout providers share: the provider-neutral webhook event
// and the errors a webhook can be rejected with.
package checkout
