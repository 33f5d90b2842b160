// Package server binds an ordered list of listen attempts and serves each
// bound listener with its own http.Server.
//
// Attempts are tried in order. A failed Required attempt aborts Bind and
// closes everything already bound; a failed optional attempt is recorded in
// its AttemptResult and skipped, so callers can log it and carry on with the
// listeners that did bind.
package server
