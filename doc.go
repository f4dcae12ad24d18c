/*
Package websession keeps a client-side copy of a server-tracked session in sync
with a remote session endpoint.

The endpoint exposes one resource: GET returns the current session snapshot as
a JSON object and DELETE ends the session. A snapshot carrying an "account"
field is authenticated; an optional numeric "ttl" (milliseconds) drives local
expiry timers.

# Usage

	sess, err := websession.New("https://example.com")
	if err != nil {
		log.Fatal(err)
	}
	defer sess.Close()

	sess.OnChange(func(ctx context.Context, e *domain.ChangeEvent) error {
		if e.Ended {
			log.Println("signed out")
		}
		return nil
	})

	if err := sess.Refresh(ctx); err != nil {
		// The session may now be anonymous; re-read sess.Data().
	}

Concurrent refreshes share one request to the endpoint (see pkg/service).
A change listener that returns an error ends the session before the error is
returned (see pkg/session).

# Sharing a session

CreateSession and GetSession cache a Session in a ports.ObjectStore so
independent parts of a program observe the same instance. Sessions of separate
processes can share expiry deadlines through a ports.Channel such as the Redis
adapter in pkg/adapters/redis.
*/
package websession
