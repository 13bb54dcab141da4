package auth

// JWTVerifier verifies bearer tokens. The middleware only depends on this
// interface, so tests and local runs can swap the JWKS implementation out.
type JWTVerifier interface {
	// VerifyToken validates signature, expiry and subject.
	VerifyToken(tokenString string) (*Claims, error)

	// Close releases resources held by the verifier.
	Close() error
}
