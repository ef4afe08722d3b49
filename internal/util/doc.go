// Package util provides common utility functions used across the multi-oauth library.
//
// Key utilities:
//   - BuildQuery / BuildURL: deterministic query-string serialization for authorization URLs
//   - SafeTruncate: Safely truncates strings for logging provider responses
package util
