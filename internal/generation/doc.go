// Package generation defines the port to the generative content provider
// that writes interview questions, concept explanations and answer grades.
//
// Every provider call returns an Outcome, and callers decide explicitly what
// to do on failure: substitute FallbackQuestions or FallbackExplanation, or
// surface the error when no safe default exists, as with answer grading.
package generation
