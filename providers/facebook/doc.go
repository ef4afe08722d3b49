// Package facebook provides a Facebook Login provider implementation.
//
// Facebook has no refresh tokens. The code exchange therefore runs in two steps:
// the authorization code is exchanged for a short-lived user token, which is then
// exchanged (grant_type=fb_exchange_token) for a long-lived token valid for about
// 60 days. Only the long-lived token is returned. RefreshToken repeats the second
// step with the token supplied in RefreshOptions.RefreshToken, extending a
// long-lived token's validity.
//
// All Graph API URLs carry the api_version credential, for example "v18.0".
package facebook
