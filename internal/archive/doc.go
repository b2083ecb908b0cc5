// Package archive writes generated Markdown notes into the vault inbox
// directory with collision-resistant, filesystem-safe filenames.
package archive
