// Package retrieval answers natural-language queries against the
// embedding store.
//
// The Retriever embeds a query, ranks stored chunks by cosine similarity,
// and returns either ranked results (Search) or a formatted context block
// ready for prompt assembly (Retrieve). Queries with no sufficiently
// similar chunks yield the NoRelevantInformation sentinel rather than an
// error.
package retrieval
