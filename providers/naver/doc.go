// Package naver provides a Naver Login provider implementation.
//
// Naver deviates from RFC 6749 in two ways the adapter absorbs: token endpoint
// failures are reported with HTTP 200 and an "error" field, and expires_in is sent
// as a string. Token deletion is a call to the token endpoint with
// grant_type=delete.
package naver
