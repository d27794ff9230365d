package generation

import (
	"fmt"
	"strings"

	"github.com/phrazzld/prep-api/internal/domain"
)

var fallbackQuestions = []GeneratedQuestion{
	{
		Question:   "Tell me about a challenging project you worked on and your role in it.",
		Answer:     "Describe the context, the specific challenge, the actions you personally took and the measurable result. Close with what you learned.",
		Topic:      "Behavioral",
		Difficulty: domain.DifficultyEasy,
	},
	{
		Question:   "How do you approach debugging a problem you have never seen before?",
		Answer:     "Reproduce the issue reliably, narrow the scope by forming and testing hypotheses, inspect logs and metrics, and confirm the fix with a regression test.",
		Topic:      "Problem Solving",
		Difficulty: domain.DifficultyMedium,
	},
	{
		Question:   "Explain the difference between a process and a thread.",
		Answer:     "A process has its own address space and resources. Threads run inside a process and share its memory, which makes them cheaper to create but requires synchronization.",
		Topic:      "Fundamentals",
		Difficulty: domain.DifficultyMedium,
	},
	{
		Question:   "What happens when you type a URL into a browser and press enter?",
		Answer:     "DNS resolves the host, a TCP and TLS connection is established, an HTTP request is sent, the server responds, and the browser parses and renders the document and its subresources.",
		Topic:      "Networking",
		Difficulty: domain.DifficultyMedium,
	},
	{
		Question:   "How would you design a URL shortening service?",
		Answer:     "Generate unique short keys, store key to URL mappings in a durable store, put a cache in front for reads, redirect with 301 or 302, and plan for analytics, expiry and abuse prevention.",
		Topic:      "System Design",
		Difficulty: domain.DifficultyHard,
	},
	{
		Question:   "What is the time complexity of looking up a key in a hash map, and when can it degrade?",
		Answer:     "Average O(1). It degrades towards O(n) with many collisions, for example with a poor hash function or adversarial keys, and resizing costs O(n) occasionally.",
		Topic:      "Data Structures",
		Difficulty: domain.DifficultyEasy,
	},
	{
		Question:   "Describe a time you disagreed with a teammate. How did you resolve it?",
		Answer:     "Explain the disagreement, how you listened and gathered data, the compromise or decision reached, and how the relationship and outcome benefited.",
		Topic:      "Behavioral",
		Difficulty: domain.DifficultyEasy,
	},
	{
		Question:   "What is the difference between SQL and NoSQL databases, and when would you choose each?",
		Answer:     "SQL databases offer schemas, joins and transactions and suit relational data. NoSQL stores trade some of that for flexible schemas and horizontal scale, suiting large or loosely structured data.",
		Topic:      "Databases",
		Difficulty: domain.DifficultyMedium,
	},
	{
		Question:   "How do you ensure the code you ship is reliable?",
		Answer:     "Automated tests at several levels, code review, static analysis, incremental rollouts with monitoring and alerts, and fast rollback paths.",
		Topic:      "Engineering Practices",
		Difficulty: domain.DifficultyMedium,
	},
	{
		Question:   "Explain what a race condition is and how to prevent one.",
		Answer:     "A race condition occurs when the result depends on the interleaving of concurrent operations on shared state. Prevent it with locks, atomic operations, message passing or immutable data.",
		Topic:      "Concurrency",
		Difficulty: domain.DifficultyHard,
	},
}

// FallbackQuestions returns up to req.Count canned questions, skipping any
// whose text appears in req.Exclude. A non-positive Count returns the whole
// set.
func FallbackQuestions(req QuestionRequest) []GeneratedQuestion {
	excluded := make(map[string]struct{}, len(req.Exclude))
	for _, text := range req.Exclude {
		excluded[strings.ToLower(strings.TrimSpace(text))] = struct{}{}
	}

	limit := req.Count
	if limit <= 0 || limit > len(fallbackQuestions) {
		limit = len(fallbackQuestions)
	}

	out := make([]GeneratedQuestion, 0, limit)
	for _, q := range fallbackQuestions {
		if len(out) == limit {
			break
		}
		if _, skip := excluded[strings.ToLower(q.Question)]; skip {
			continue
		}
		out = append(out, q)
	}
	return out
}

// FallbackExplanation wraps the stored answer in a note that the generated
// explanation is unavailable.
func FallbackExplanation(question, answer string) string {
	return fmt.Sprintf(
		"## %s\n\n%s\n\n> A detailed explanation could not be generated right now. "+
			"The reference answer is shown instead; try again later for a full walkthrough.\n",
		strings.TrimSpace(question),
		strings.TrimSpace(answer),
	)
}
