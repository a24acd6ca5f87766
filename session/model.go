package session

// Data is the authoritative payload of a session. It is the only source the
// engine trusts for the acting user's identity.
type Data struct {
	UserID string `json:"userId"`
}

// Session pairs an opaque token with its stored data.
type Session struct {
	SessionID string `json:"sessionId"`
	Data      Data   `json:"sessionData"`
}
