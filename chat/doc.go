// Package chat drives a single conversational turn: classification,
// session tracking, retrieval, handoff policy, and response assembly.
package chat
