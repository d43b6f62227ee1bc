// Package jwt issues and verifies identity tokens that carry a user name
// (the "sub" claim) and the user's group memberships.
//
// It is the token side of middleware.BearerJWT; goChmod itself never parses
// tokens.
package jwt
