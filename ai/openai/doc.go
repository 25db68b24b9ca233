// Package openai implements the ai service interfaces against
// OpenAI-compatible HTTP APIs via langchaingo. It works with the hosted
// OpenAI API as well as local servers (vLLM, Ollama, LocalAI) that expose
// the same surface.
package openai
