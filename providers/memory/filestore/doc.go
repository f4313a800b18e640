// Package filestore keeps a memory collection in a JSON file. Files are
// created lazily and replaced atomically with a temp-file rename.
package filestore
