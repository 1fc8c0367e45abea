package auth

import (
	stderrors "errors"
	"fmt"
	"time"

	"cinechat/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the resolved principal behind a valid credential. It is
// attached by value to whatever carried the credential (request context,
// live connection) and never shared by reference.
type Identity struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
}

// IdentityResolver turns a subject claim into a live Identity. The user
// store provides the production implementation; verification fails with
// ErrUnknownSubject when the subject no longer resolves.
type IdentityResolver interface {
	ResolveIdentity(id string) (Identity, error)
}

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Handle string   `json:"handle"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Authenticator verifies bearer credentials and mints new ones at login
// time. Verification is a pure function of (credential, secret, time) plus
// one idempotent identity lookup.
type Authenticator struct {
	secret        []byte
	tokenDuration time.Duration
	resolver      IdentityResolver
}

func NewAuthenticator(secret []byte, tokenDuration time.Duration, resolver IdentityResolver) *Authenticator {
	return &Authenticator{
		secret:        secret,
		tokenDuration: tokenDuration,
		resolver:      resolver,
	}
}

// GenerateToken creates a signed JWT for a specific user.
func (a *Authenticator) GenerateToken(userID, handle string, roles []string) (string, error) {
	expirationTime := time.Now().Add(a.tokenDuration)

	claims := &CustomClaims{
		UserID: userID,
		Handle: handle,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "cinechat",
		},
	}

	// HS256 (HMAC with SHA256), signed with the server's secret key.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Verify parses and validates the signature and expiration of a credential,
// then resolves the subject claim to a live Identity.
func (a *Authenticator) Verify(credential string) (Identity, error) {
	token, err := jwt.ParseWithClaims(credential, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, errors.ErrExpiredCredential
		}
		return Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidCredential, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return Identity{}, errors.ErrInvalidCredential
	}

	identity, err := a.resolver.ResolveIdentity(claims.UserID)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %s", errors.ErrUnknownSubject, claims.UserID)
	}
	return identity, nil
}
