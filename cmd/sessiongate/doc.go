// Package main provides the entry point for sessiongate.
//
// sessiongate signs in to an auth API, keeps the session on disk and gates
// its screens on that session. It runs single commands or an interactive
// shell.
package main
