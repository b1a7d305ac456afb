// Package cli provides the interactive vidtube command-line client.
//
// It wires configuration, the local session store and the API client into a
// REPL. A background watcher pings the server and the prompt shows whether
// it is reachable.
//
// Commands: register, login, whoami, refresh, passwd, account, upload,
// logout, help, exit.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
