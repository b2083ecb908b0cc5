// Package gcs implements the worker's blob store contract: HTTP download
// of image payloads and Cloud Storage deletion of processed uploads.
package gcs
