// Package llm provides language model clients for dispute letter generation,
// regulation embeddings and the external account classifier. It supports
// OpenAI (including Azure and Ollama endpoints), Anthropic and Gemini, with
// retry logic, rate limiting and verdict caching.
package llm
