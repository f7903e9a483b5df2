package ports

// PasswordHasher produces and checks one-way password hashes whose encoding
// identifies the scheme that produced them.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify returns (false, nil) on mismatch and an error when the hash
	// cannot be evaluated at all.
	Verify(plaintext, hash string) (bool, error)
	// IsHashed reports whether value is already an encoded hash of this scheme.
	IsHashed(value string) bool
	// NeedsRehash reports whether hash was produced with weaker parameters
	// than the hasher currently uses.
	NeedsRehash(hash string) bool
}
