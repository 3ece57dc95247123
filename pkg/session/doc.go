// Package session holds visitor sessions: the Session model, a Store
// contract with a cache-backed implementation, and context helpers used by
// the session middleware and the session cache backend.
package session
