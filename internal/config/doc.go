// Package config resolves CLI settings from defaults, a YAML file, .env
// files and the environment.
package config
