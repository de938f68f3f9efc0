// Package notifications delivers optional ntfy push notifications for mining
// milestones and failures. A noop service is used when no topic is
// configured, so callers never branch on configuration.
package notifications
