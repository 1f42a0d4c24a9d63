// Package llm provides a chat-completions client for OpenRouter-compatible
// APIs and the drafting stage that turns a video transcript into publishing
// copy.
package llm
