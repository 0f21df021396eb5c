// Package token generates opaque random tokens and the digests stored in
// their place.
//
// A token is shown once, to its owner. Only Hash(token) is kept, so a
// leaked table cannot be replayed.
package token
