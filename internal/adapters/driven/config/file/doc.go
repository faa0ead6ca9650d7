// Package file provides the TOML configuration store.
//
// Keys use dot notation ("ncbi.email") in memory and are written as TOML
// tables on disk:
//
//	[ncbi]
//	email = 'me@example.org'
package file
