// Package tlsroots builds the set of CAs trusted when talking to the auth
// API.
//
// The pool starts from the system roots, so adding a private CA (for a dev
// API behind a self-signed certificate) never breaks public endpoints.
package tlsroots
