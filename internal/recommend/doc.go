// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package recommend implements the recommendation core for Kinoscope.
//
// # Architecture
//
// Three independent strategies produce ranked lists of movie identifiers:
//
//   - Content: cosine similarity between TF-IDF feature vectors built from
//     movie metadata (genres, keywords, cast, directors, overview).
//   - Rating: content similarity blended with a Bayesian-adjusted community
//     rating score, protecting against thinly-rated outliers.
//   - Collaborative: user-based neighborhood collaborative filtering over a
//     sparse user-movie rating matrix, with a popularity fallback for
//     cold-start users.
//
// The Service type is the single entry point; the surrounding application
// never touches the vectorizer, index, or matrix directly.
//
// # Data Flow
//
//	catalog snapshot -> Vectorize -> Index.Rebuild -> {Content, Rating}
//	ratings          -> MatrixStore               -> Collaborative
//
// Feature vectors and the similarity index are derived artifacts, rebuilt on
// catalog change rather than on every read. The rating matrix is mutated
// incrementally and always read live.
//
// # Thread Safety
//
// The index is published atomically: readers observe either the previous or
// the new snapshot, never a partially built one. Concurrent rebuild requests
// are coalesced so at most one build runs at a time. The matrix store uses a
// read-write lock and hands out copies, so readers see a consistent snapshot
// taken at call time.
//
// # Errors
//
// The package surfaces a small closed taxonomy: NotFoundError for unknown
// movie or user identifiers, ValidationError for out-of-range inputs, and
// InsufficientDataError when there is not enough data to compute anything.
// The only internal recovery is the collaborative cold-start fallback to
// popularity ranking, which is designed behavior rather than error
// suppression.
package recommend
