// Package biz implements the RAG core: document chunking and enrichment,
// multi-strategy retrieval with re-ranking, and the agent pipeline that
// routes, analyzes, retrieves and synthesizes answers.
package biz
