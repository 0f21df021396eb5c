// Package session owns the client's current authenticated session.
//
// A Store is the single writer of the Session. It persists one record under
// a fixed key of a storage.KVEngine with an explicit expiry, and hands the
// token out to readers as an Authorization header value. Anything it cannot
// read back cleanly (missing, expired, malformed) is reported as "no session".
//
// When the storage engine fails the store keeps working from memory; the
// session then lasts only as long as the process.
package session
