// Package google implements sign-in with a Google account: it builds the
// consent URL, exchanges the returned authorization code for a token, and
// reads the account's verified identity from the userinfo endpoint.
package google
