/*
Package domain contains the core domain models of the websession client.

It defines the session snapshot returned by the remote endpoint, the closed set
of lifecycle events a session emits, the observability hooks and the sentinel
errors shared by every other package. It is kept free of I/O so that the
service, session and adapter packages can depend on it without cycles.

# Key Entities

  - Snapshot: the opaque session payload, compared structurally for change detection.
  - ChangeEvent: emitted when the cached snapshot is replaced.
  - ExpireEvent: emitted when a locally tracked ttl elapses without a refresh.
  - LifecycleHooks: callbacks used by metrics and logging decorators.
*/
package domain
