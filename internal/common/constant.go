// Package common contains shared constants and sentinel errors used across
// eBet components.
package common

const (
	// AuthorizationHeaderName is the HTTP header carrying the bearer credential.
	AuthorizationHeaderName = "Authorization"

	// AuthorizationMetadataKey is the gRPC metadata key carrying the bearer
	// credential. gRPC lower-cases all metadata keys.
	AuthorizationMetadataKey = "authorization"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"
)
