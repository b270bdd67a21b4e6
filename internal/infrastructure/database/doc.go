// Package database provides SQLite connection management and schema
// migrations for Voice Core's persistent state.
//
// The database holds two kinds of state: conversation sessions (admission
// quotas and expiry bookkeeping) and the command audit trail. SQLite is
// used in WAL mode with a single writer connection, which is ample for the
// write rates involved and keeps the deployment to a single file.
//
// Migrations are embedded in the binary (see the top-level migrations
// package) and applied automatically at startup, so a fresh database file
// is fully usable with no external tooling.
//
// # Security Considerations
//
// The database file is created with 0600 permissions and its directory
// with 0750. Audit rows never contain raw rejected input, only the
// normalised text of accepted commands.
package database
