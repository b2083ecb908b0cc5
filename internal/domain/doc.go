// Package domain contains the core business entities and domain logic of
// the worker: the capture queue item, its lifecycle statuses, content
// types, and generation modes. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
