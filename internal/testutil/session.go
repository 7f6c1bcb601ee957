package testutil

// FixedSessionGenerator names every journal session with the same token,
// so golden journals do not depend on UUIDs. Implements
// engine.SessionTokenGenerator.
type FixedSessionGenerator struct {
	token string
}

// NewFixedSessionGenerator creates a generator for token, or for
// "test-session" when token is empty.
func NewFixedSessionGenerator(token string) *FixedSessionGenerator {
	if token == "" {
		token = "test-session"
	}
	return &FixedSessionGenerator{token: token}
}

func (g *FixedSessionGenerator) Generate() string {
	return g.token
}
