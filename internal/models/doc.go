// Package models lists the chat models offered by an OpenAI compatible
// endpoint, so users can pick a value for enrich.model. It works against
// OpenAI itself and against OpenRouter.
package models
