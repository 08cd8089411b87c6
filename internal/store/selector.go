// Package store resolves which bookmark backend owns a request.
package store

import "github.com/sohee-an/smart-bookmark-app/internal/bookmark"

// Selector picks the repository for a resolved identity: the remote
// store for authenticated users, the local quota-limited store for
// guests. Resolution happens once per call and is never cached, since
// the session can change between calls.
type Selector struct {
	local  bookmark.Repository
	remote bookmark.Repository
}

// NewSelector constructs a Selector. The remote repository may be nil
// when the service runs in local-only mode.
func NewSelector(local, remote bookmark.Repository) *Selector {
	return &Selector{local: local, remote: remote}
}

// For returns the repository owning the identity's partition.
func (s *Selector) For(owner bookmark.Identity) bookmark.Repository {
	if owner.Authenticated() && s.remote != nil {
		return s.remote
	}
	return s.local
}
