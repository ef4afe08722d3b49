package providers

// Credential keys understood by the built-in adapters.
const (
	CredentialClientID     = "client_id"
	CredentialClientSecret = "client_secret"
	CredentialRedirectURI  = "redirect_uri"
	CredentialAPIVersion   = "api_version"
)

// Credentials maps credential keys to values. client_id and client_secret are
// mandatory for every provider; other keys are provider specific.
type Credentials map[string]string

// Get returns the value for key, or "".
func (c Credentials) Get(key string) string {
	return c[key]
}

// ClientID returns the client_id credential.
func (c Credentials) ClientID() string {
	return c[CredentialClientID]
}

// ClientSecret returns the client_secret credential.
func (c Credentials) ClientSecret() string {
	return c[CredentialClientSecret]
}

// RedirectURI returns the redirect_uri credential.
func (c Credentials) RedirectURI() string {
	return c[CredentialRedirectURI]
}

// Clone returns a copy that shares no state with c.
func (c Credentials) Clone() Credentials {
	out := make(Credentials, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// FirstMissing returns the first key in required whose value is absent or empty.
func (c Credentials) FirstMissing(required []string) (string, bool) {
	for _, field := range required {
		if c[field] == "" {
			return field, true
		}
	}
	return "", false
}
