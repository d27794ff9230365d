// Package store defines the persistence ports of the application and the
// errors and transaction helper shared by their implementations.
package store
