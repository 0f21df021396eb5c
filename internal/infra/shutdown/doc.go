// Package shutdown coordinates graceful process termination.
//
// A Handler waits for SIGINT/SIGTERM, an explicit Trigger, or the parent
// context, then runs registered hooks in reverse order under a timeout.
// The dev API server uses it to drain HTTP connections; the REPL uses it
// to close session storage on Ctrl-C.
package shutdown
