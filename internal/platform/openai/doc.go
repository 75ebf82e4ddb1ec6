// Package openai implements the llm generation contract against OpenAI's
// chat-completions API. The adapter requires an API key (OPENAI_API_KEY or
// an explicit option) and rejects unfilled placeholder keys; the underlying
// HTTP client is created lazily on first use.
package openai
