// Package apply contains the domain appliers: each one translates a typed
// configuration snapshot into regenerated config files and service-reload
// commands. Appliers are best-effort by contract — they never return a Go
// error to the caller. Every call ends in one of three outcomes:
//
//   - Applied: files written and reload commands issued (command exit
//     status is logged but never treated as fatal);
//   - Skipped: a silent no-op, e.g. an unknown account or an empty key
//     list, carrying the reason;
//   - Failed: a resource-open failure terminal to this one call, with no
//     partial artifact and no escalation.
//
// Failures are isolated per domain, and within the authentication domain
// per user. The interface applier is the one exception: a write failure
// there abandons the remaining interfaces and skips the final reload.
//
// Appliers run synchronously on the daemon's event-loop goroutine, so a
// file write always completes before its dependent reload command starts.
package apply
