package session

import "errors"

// ErrNotFound indicates the requested session does not exist or has
// expired. Expired sessions are indistinguishable from absent ones.
//
// Check with errors.Is:
//
//	sess, err := store.Get(id)
//	if errors.Is(err, session.ErrNotFound) {
//	    // handle missing session
//	}
var ErrNotFound = errors.New("session not found")
