// Package llm provides HTTP clients for the external language model backends
// used to generate financial insights. It supports a local Ollama server and
// the Hugging Face and Cohere hosted inference APIs behind a single Client
// interface.
package llm
