// Package cli provides the interactive activitydash command-line client.
//
// It wires configuration, the HTTP API client and a small REPL. Tokens are
// held in memory only; quitting the program forgets the session.
//
// Commands:
//   - register / login / logout
//   - profile / update
//   - chart (daily login and logout counts)
//   - export (server-side JSON export, downloaded into the reports dir)
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
