// Package gemini implements the generation.Generator interface using
// Google's Gemini API, with mode-specific prompt templates, inline image
// attachments, and the URL-context capability for url captures.
package gemini
