// Command oauthctl drives multi-provider OAuth flows from the command line.
//
// Provider credentials come from a YAML config (--config) and from environment
// variables named <PREFIX>_<PROVIDER>_<FIELD>, optionally loaded from dotenv files:
//
//	export OAUTH_GOOGLE_CLIENT_ID=... OAUTH_GOOGLE_CLIENT_SECRET=... OAUTH_GOOGLE_REDIRECT_URI=http://localhost:8080/callback
//	oauthctl auth-url google --pkce
//	oauthctl exchange google --code 4/0Ab... --code-verifier ...
//	oauthctl userinfo google --access-token ya29...
//
// Every command prints JSON to stdout.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
