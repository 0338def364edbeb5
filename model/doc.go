// Package model defines the provider-agnostic abstraction the analyst uses to
// turn a prompt into an answer.
//
// A Model streams Response chunks on one channel and reports failure on a
// second; Collect drains both and yields the final answer. Providers
// (OpenAI, Anthropic) live in sub-packages so the analyst and the session
// store stay decoupled from vendor SDKs. MockModel serves tests and examples.
package model
