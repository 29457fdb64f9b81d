// Package auth provides session-based authentication for the catalog's
// administrative surface.
//
// Authentication is optional and controlled by AUTH_MODE:
//
//   - "none" (default): the management API is open; every request runs as the
//     default user.
//   - "local": administrative accounts live in the users table, passwords are
//     bcrypt-hashed, and sessions are stored server-side in SQLite via scs.
//
// The public catalog listing never requires authentication.
package auth
