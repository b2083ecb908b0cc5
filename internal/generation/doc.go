// Package generation defines the contract for the external
// content-generation service that transforms captures into Markdown notes.
package generation
