/*
Package session implements the client-side session lifecycle core.

A Session caches the last snapshot returned by a ports.SessionService and keeps
it synchronized through Refresh and End. Listeners registered with On receive
change and expire events sequentially, in registration order. A failing change
listener ends the session before the error reaches the caller, so a listener
fault never leaves the client holding a stale authenticated snapshot.

When a ports.Channel is configured, sessions attached to the same channel share
expiry deadlines: each refresh of an authenticated snapshot carrying a ttl is
broadcast, and every attached session re-arms its local expiry timer.
*/
package session
