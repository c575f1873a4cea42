// Package notifications posts end-of-run alerts to an ntfy topic.
//
// When no topic is configured NewService returns a no-op implementation, so
// callers can notify unconditionally.
package notifications
