// Package analytics computes the dashboard views derived from a user's
// sessions: the readiness score and the knowledge-gap report. Both are
// total functions over an in-memory snapshot and never fail.
package analytics
