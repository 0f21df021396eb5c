// Package command provides the sessiongate CLI commands.
//
// It uses urfave/cli/v2 for command parsing and supports both one-shot
// commands and the interactive REPL:
//
//   - root.go: App, global flags, environment setup and teardown
//   - env.go: wiring of storage, session store, gateway, guard and screens
//   - auth.go: login, signup, forgot-password, reset-password and logout
//   - session.go: status, verify and profile
//   - config.go: config show, path, init and validate
//   - version.go: build information
//   - repl.go: interactive mode
package command
