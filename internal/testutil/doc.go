// Package testutil contains helpers used across tests to reduce boilerplate:
// a manually advanced clock for expiry scenarios and a recording logger for
// asserting log output. These helpers are intentionally minimal and are not
// intended for production usage.
package testutil
