// Package registry maps provider names to adapter constructors.
//
// The built-in table covers google, kakao, naver, github, facebook and x. It is
// built once at init and never mutated; New builds a separate read-only table,
// which tests use to plug in providers/mock.
//
//	p, err := registry.Default().Create("google", creds, nil)
//	var unknown *registry.UnknownProviderError
//	if errors.As(err, &unknown) {
//		log.Printf("available: %v", unknown.Available)
//	}
package registry
