// Package main provides the entry point for sessiongate-devapi.
//
// sessiongate-devapi is an in-memory auth API for local development. It
// serves the login, register, forgot-password, reset-password, verify and
// profile endpoints that sessiongate talks to. Reset links are written to
// the log. Accounts are lost on restart.
package main
