// Package testutil provides testing utilities for the multi-oauth library. It
// includes a provider test server that records every request it receives and an
// http.RoundTripper that redirects real provider hosts to that server, so adapters
// can be tested against their production endpoint constants.
package testutil
