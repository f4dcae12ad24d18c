/*
Package service talks to the remote session endpoint.

A Service issues `GET <url>` to read the current session snapshot and
`DELETE <url>` to terminate it. Concurrent Get calls are coalesced: while one
request is in flight every other caller waits for that same request and
receives the identical snapshot (or the identical error). Nothing is retried
here; retry policy belongs to the caller.
*/
package service
