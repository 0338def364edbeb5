// Package analyst answers natural-language questions about channel and video
// metrics. Each question is answered with the caller's recent conversation
// (read from a core.SessionStore) folded into the prompt, and the resulting
// question/answer pair is appended to the same session afterwards.
//
// When no model is configured, or the model fails or returns nothing, the
// analyst answers from a fallback template instead of returning an error, so
// the conversation history keeps growing either way.
package analyst
