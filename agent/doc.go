// Package agent implements the loop driver: a single-threaded, turn-based
// state machine that renders goals, actions and memory into a prompt, asks
// the model what to do, executes the chosen action through the environment
// and appends everything back into memory until a terminal action, a free
// text answer, or the mandatory iteration cap ends the session.
//
// Error policy (deterministic):
//   - Model timeouts and malformed replies are retried within the iteration
//     up to MaxRetries, each attempt recorded as a system memory item; when
//     the budget is exhausted the session ends with StatusFailed.
//   - Unknown actions and invalid arguments are recorded as environment
//     error results and the loop continues, letting the model self-correct.
//   - Action errors and panics never escape the environment boundary.
package agent
