// Package devapi is an in-memory auth API for local development and tests.
//
// It serves the endpoints the gateway calls (login, register,
// forgot-password, reset-password, verify, profile) with bcrypt password
// records and HS256 tokens carrying sub and exp. Reset tokens are single
// use and stored only as SHA-256 digests. Nothing is persisted; restarting
// the server forgets every account.
package devapi
