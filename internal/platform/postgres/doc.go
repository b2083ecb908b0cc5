// Package postgres implements the store.QueueStore interface using
// PostgreSQL, with LISTEN/NOTIFY providing real-time push of queue
// changes to the worker's subscription.
package postgres
