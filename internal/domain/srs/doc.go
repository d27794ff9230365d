// Package srs implements the spaced-repetition core: concept
// fingerprinting, the SM-2 derived review scheduler, mastery and priority
// classification, and improvement tracking. Everything here is a pure
// function of its inputs.
package srs
