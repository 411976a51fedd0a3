// Package common contains shared constants, the error taxonomy and small
// helpers used across stockroom components.
package common

// AuthorizationHeaderName carries the bearer access token on inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// SystemActor is recorded in audit fields when no authenticated user is known.
const SystemActor = "system"
