// Package apierror provides error inspection capabilities for Threads API errors.
// It centralizes the logic for identifying different types of errors returned by
// the platform's internal GraphQL endpoint, eliminating the need for string-based
// error checking throughout the codebase.
package apierror
