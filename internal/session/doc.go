// Package session implements the study-session lifecycle: generating or
// loading a deck, flipping and shuffling cards, tracking review progress,
// saving cards, and gating the text export behind a time-limited payment
// entitlement.
//
// A Controller owns one session's state and is not safe for concurrent use;
// the Registry serializes access when many sessions are served at once.
// Remote work goes through the small collaborator interfaces below so the
// controller can be driven from a terminal, an HTTP API or tests alike.
package session
