/*
Package observability exports session lifecycle activity as Prometheus metrics.

Metrics builds a domain.LifecycleHooks value that can be handed to both the
session service (fetch round trips) and the session core (changes, expiries
and recoveries).
*/
package observability
