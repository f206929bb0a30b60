package tracker

// Identity is the current user as supplied by the authentication
// collaborator. SyncEligible is false for anonymous and test
// identities, which must never touch the remote mirror.
type Identity struct {
	UserID       string
	SyncEligible bool
}

// Valid reports whether the identity can back a collection at all.
func (i Identity) Valid() bool { return i.UserID != "" }

// IdentitySource supplies the current identity and fires a change
// notification on login, logout and account switch.
type IdentitySource interface {
	Current() Identity
	// OnChange registers fn to run on every identity transition and
	// returns a cancel func that unregisters it.
	OnChange(fn func(Identity)) (cancel func())
}
