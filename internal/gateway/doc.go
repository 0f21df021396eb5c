// Package gateway is the client for the remote auth API.
//
// Every operation takes a context and typed input and returns either a
// typed payload or a *domain.AuthError. Transport failures, non-2xx
// statuses and unusable success bodies all pass through one normalization
// routine, so callers switch on domain.ErrorKind and never see a raw
// net/http error.
//
// The gateway holds no session state of its own. It reads the current
// session from a SessionStore to attach the Authorization header and clears
// that store when the server rejects the token on an authenticated call.
package gateway
