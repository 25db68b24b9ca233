// Package mock provides test doubles for the ai package interfaces.
//
// Each mock accepts optional function fields to inject behavior and
// tracks call counts for assertion. Without injection the mocks return
// deterministic defaults: the embedder produces stable pseudo-random
// vectors derived from the input text, the generator returns a canned
// completion, and the enhancer echoes the query.
package mock
