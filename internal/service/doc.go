// Package service orchestrates the interview-prep use cases on top of the
// store ports, the generation provider and the pure domain packages.
//
// Each service owns one area:
//
//   - SessionService creates practice sessions, generating their questions
//     or falling back to a canned set when generation fails.
//   - QuestionService handles per-question actions: pinning, notes, answer
//     submission and concept explanations.
//   - MistakeService records concept attempts and serves the weak, due and
//     summary views of a user's concept records.
//   - DashboardService computes the readiness score and knowledge-gap report
//     through the dashboard cache.
//   - UserService registers and authenticates users and links external
//     identities.
//
// Multi-write operations run through store.RunInTransaction using the
// stores' WithTx variants. Any mutation that can change a dashboard drops
// the user's cached dashboard entries after it commits.
//
// Resources owned by another user are reported as not found so their
// existence is never revealed.
package service
