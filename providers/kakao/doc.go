// Package kakao provides a Kakao Login provider implementation.
//
// Kakao issues tokens from kauth.kakao.com and serves user APIs from
// kapi.kakao.com. Kakao has no token revocation endpoint; RevokeToken calls the
// logout API, which expires the user's access and refresh tokens. Apps with an
// admin key may log out another user by passing RevokeOptions.TargetID.
//
// The client_secret is sent only when configured, matching Kakao apps that do not
// enable the client secret feature.
package kakao
