// Package notify delivers best-effort push notifications to a fixed
// broadcast topic over ntfy's HTTP API.
package notify
