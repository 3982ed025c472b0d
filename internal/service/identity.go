package service

// Identity is the authenticated caller, resolved from the access token by
// the HTTP layer and handed to every operation that needs it.
type Identity struct {
	UserID uint
	Email  string
	Role   string
}
