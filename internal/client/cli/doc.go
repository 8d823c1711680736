// Package cli provides the interactive seowatch command-line client.
//
// The App wires the application services into a read-eval-print loop. One
// process is one client context: several processes may share a device
// database and see each other's session changes through the change bus.
//
// Commands:
//   - register, login, logout, whoami: manage the device session
//   - plan, buy: change the plan or buy scan credits
//   - add, remove, list, activate, deactivate, freq: tracked resources
//   - scan, reports: manual scans and scan history
//   - generate, suggest, contents: AI content features
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// ctx is cancelled.
package cli
