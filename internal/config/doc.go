// Package config defines the application's configuration structure and
// loads it from the environment at process start.
package config
