// Package auth provides authentication services: password hashing and
// JWT access/refresh token issuance and validation.
package auth

import "errors"

// Authentication errors returned by the JWT and password services.
var (
	// ErrInvalidToken is returned when a token is malformed or its
	// signature does not verify.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when an access token has expired.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid is returned when a token's not-before claim is
	// in the future.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrWrongTokenType is returned when an access token is presented
	// where a refresh token is expected, or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidRefreshToken is returned when a refresh token is malformed
	// or its signature does not verify.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken is returned when a refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token expired")

	// ErrInvalidCredentials is returned when an email/password pair does
	// not match a known user. Deliberately indistinct about which part
	// failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
