// Package profile finds and removes the on-disk cookie and cache artifacts
// of user profiles under a settings directory.
package profile
