// Package auditlog provides append-only file logs for fairness and error
// records, with bounded tail reads for review endpoints.
package auditlog
