// Package domain defines the entities of the interview practice service:
// users, practice sessions with their questions, and the per-concept
// mistake records that drive spaced repetition.
package domain
