package domain

// Field names inside a session snapshot.
const (
	// KeyAccount holds the authenticated account. Its presence marks the session as authenticated.
	KeyAccount = "account"

	// KeyAccountID is the identifier field nested inside KeyAccount.
	KeyAccountID = "id"

	// KeyTTL is the remaining lifetime of the server session, in milliseconds.
	KeyTTL = "ttl"
)
