// Package store defines interfaces for queue persistence operations.
// These interfaces abstract the underlying storage mechanism from the
// worker's core logic, allowing the lifecycle state machine to remain
// independent of specific database technologies.
package store
