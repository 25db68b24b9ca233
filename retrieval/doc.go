// Package retrieval implements the two-stage retrieval funnel. The
// first stage ranks every chunk by cosine similarity against the query
// embedding and keeps a wide candidate set; the second stage rescores
// the survivors with a cross-encoder reranker and keeps a narrow final
// set. The funnel never widens: each stage only filters and reorders.
package retrieval
