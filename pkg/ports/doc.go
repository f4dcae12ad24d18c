/*
Package ports defines the driven ports (interfaces) of the websession client.

These interfaces decouple the session lifecycle core from external
implementations, so the core can run against a real HTTP endpoint and shared
storage in production and against in-memory fakes in tests.

# Key Interfaces

  - SessionService: fetches and terminates the remote session (coalesced reads).
  - Doer: the generic HTTP request/response client used by the service.
  - Channel: the cross-client broadcast storage used for expiry synchronization.
  - ObjectStore: caches live session instances by id.
*/
package ports
