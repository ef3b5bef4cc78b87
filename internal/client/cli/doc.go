// Package cli implements the interactive Matchpoint client.
//
// One running process corresponds to one "tab": it bootstraps the session
// with a startup probe, keeps it converged with other tabs through the
// event relay, and exposes the auth and profile flows as REPL commands.
package cli
