package domain

// User models a record in the credential store. PasswordHash holds the
// lowercase hex SHA-256 digest of the plaintext password; the plaintext
// itself is never persisted or logged.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	DisplayName  string `json:"name"`
	PasswordHash string `json:"-"`
}

// SessionIdentity is the authenticated principal attached to a session.
type SessionIdentity struct {
	Username    string `json:"username"`
	DisplayName string `json:"name"`
}
