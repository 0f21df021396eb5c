// Package repl provides the interactive mode of the sessiongate CLI.
//
//   - repl.go: read loop, prompt and dispatch
//   - commands.go: screen commands (go, set, show, submit, profile, logout)
//   - completer.go: completion for commands, pages and form fields
//   - history.go: command history persistence with secrets redacted
//
// The prompt names the current page. Setting a sensitive field without a
// value reads it from the next line, which is never recorded in history.
package repl
