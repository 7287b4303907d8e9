// Package enrich turns a bare word into a translation, a part of speech and
// example sentences by asking a language model. OpenAI compatible endpoints
// (OpenAI itself and OpenRouter) and Google Gemini are supported, optionally
// behind a circuit breaker.
package enrich
