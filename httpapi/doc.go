// Package httpapi exposes the advisor over HTTP: the chat endpoint, raw
// document search, health, and the admin surface for logs, analytics,
// users, and document management.
package httpapi
