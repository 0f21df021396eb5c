// Package screen holds the CLI's pages: login, signup, forgot-password,
// reset-password and home. Each form page mounts a fresh form.Controller when the router shows
// it and unmounts it when the router leaves, so one-shot commands and the
// REPL share the same guard decisions and form state machine.
package screen
