package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultRole is assigned to accounts registered without an explicit role.
const DefaultRole = "ROLE_USER"

// Field names reported by InvalidInputError and ConflictError.
const (
	FieldUsername   = "username"
	FieldEmail      = "email"
	FieldFullName   = "full name"
	FieldPassword   = "password"
	FieldIdentifier = "identifier"
)
