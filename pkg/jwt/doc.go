// Package jwt provides JSON Web Token signing and validation for the
// Libris API.
//
// Tokens are signed with RS256 and carry the subject's user id, email,
// and role alongside the standard registered claims. Tokens are
// stateless: expiry is the only lifecycle bound, and there is no
// server-side revocation list.
//
// # Key Management
//
// The signing key pair is loaded once at service startup from PEM files:
//
//	svc, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "./keys/private.pem",
//	    PublicKeyPath:  "./keys/public.pem",
//	    Issuer:         "libris",
//	    ExpirationMins: 60,
//	})
//
// A service constructed with only a public key can validate but not sign,
// which suits read-only deployments.
//
// # Error Discrimination
//
// Validate distinguishes failure modes so callers can react differently:
//
//   - ErrTokenExpired: the token was well-formed and correctly signed but
//     its expiry has passed (prompt re-login)
//   - ErrInvalidSignature: signature verification failed
//   - ErrInvalidToken: the token could not be parsed at all
package jwt
