// Package auth provides the session token service and credential hashing for
// the course booking API.
//
// # Overview
//
// Tokens are HS256-signed JWTs carrying the identity id, email and admin flag.
// They are never stored server-side; every protected request verifies the
// signature against the configured secret.
//
//	tokens := auth.NewTokenService([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenExpiry)
//	access, err := tokens.Issue(auth.Identity{ID: user.ID, Email: user.Email, IsAdmin: user.IsAdmin})
//
//	// later, from the Authorization header
//	identity, err := tokens.Verify(r.Header.Get("Authorization"))
//	if errors.Is(err, auth.ErrMissingToken) { ... }
//
// An expiry of zero issues tokens without an exp claim.
//
// # Passwords
//
// BcryptHasher hashes and compares passwords; the default cost is 10.
//
//	hasher := auth.NewBcryptHasher(auth.DefaultBcryptCost)
//	hash, err := hasher.Hash("password1")
//	ok := hasher.Compare(hash, "password1")
package auth
