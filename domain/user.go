package domain

// UserIdentity is the signed-in identity the session provider exposes.
// The core reads it on every mutating operation and never writes it.
type UserIdentity struct {
	ID          string
	Username    string
	DisplayName string
}
