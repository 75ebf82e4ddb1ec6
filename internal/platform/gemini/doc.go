// Package gemini implements the llm generation contract against Google's
// Gemini models on Vertex AI, using the google.golang.org/genai SDK.
//
// The adapter needs a Google Cloud project and location, defaulted from
// GOOGLE_CLOUD_PROJECT and GOOGLE_CLOUD_LOCATION when not supplied
// explicitly. Unlike the OpenAI adapter it has no concept of message turns:
// all system messages are flattened into one system instruction and all
// user messages into one user turn. A finish reason indicating the output
// hit the length limit is surfaced as an error so the shared retry loop
// treats truncation as a transient failure rather than returning a cut-off
// payload.
package gemini
