// Package cmap provides a concurrent map split into independently locked
// shards.
//
// Each shard holds its own RWMutex, so writers to different keys rarely
// contend. SetIfAbsent is atomic per key, which makes the map usable as a
// uniqueness index:
//
//	byEmail := cmap.New[string, *Account]()
//	if !byEmail.SetIfAbsent(email, acct) {
//		return errTaken
//	}
package cmap
