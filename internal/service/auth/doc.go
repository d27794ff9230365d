// Package auth issues and validates the HMAC-signed JWTs used for API
// authentication, and verifies bcrypt password hashes.
//
// Two token kinds exist. Access tokens authorize API calls and are short
// lived. Refresh tokens are only accepted by the refresh endpoint, which
// trades one for a new pair. The kind is carried in a "type" claim and
// checked on validation so one kind can never stand in for the other.
package auth
