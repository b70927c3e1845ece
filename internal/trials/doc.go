// Package trials builds and persists the randomized trial order of a session.
//
// A trial list is two parallel integer sequences of equal length: the cost
// level shown at each trial and the feeder offered. Each sequence is drawn
// independently from its own (values, probabilities) axis by a
// truncate-then-correct procedure:
//
//  1. append floor(p*N) copies of every value
//  2. shuffle uniformly
//  3. while shorter than N, append a value drawn from the categorical
//     distribution; while longer, draw a value and remove its first occurrence
//
// Truncation always rounds down, so low-probability values can come out one
// short of round(p*N). This matches the behaviour operators have already
// collected data with and is kept deliberately.
//
// Lists are saved as CSV with the header "feeder,cost_level".
package trials
