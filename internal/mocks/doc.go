// Package mocks provides shared test doubles for the store ports, the
// generation provider, the dashboard cache and the token service.
//
// Store and provider doubles are testify mocks; set expectations with On
// and check them with AssertExpectations. Store mocks return themselves from
// WithTx so that code running inside a transaction hits the same
// expectations. MemoryCache is an in-process fake. MockJWTService and
// MockPasswordVerifier use function fields with defaults for the common
// cases.
package mocks
