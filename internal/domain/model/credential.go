package model

import "strings"

// CredentialSource records where a credential value was found.
type CredentialSource string

const (
	SourceMemory           CredentialSource = "memory"
	SourceEnvironment      CredentialSource = "environment"
	SourceFile             CredentialSource = "file"
	SourceInteractiveLogin CredentialSource = "interactive-login"
	SourceManual           CredentialSource = "manual"  // Seeded by the operator via the CLI or API.
	SourceDerived          CredentialSource = "derived" // Computed from an upstream call (area hash).
)

// CredentialKey names a persisted session value.
type CredentialKey string

const (
	KeyToken    CredentialKey = "token"
	KeyAreaHash CredentialKey = "area_hash"
)

// Credential is an opaque session value together with its provenance. A
// Credential is never mutated; a refresh replaces it wholesale.
type Credential struct {
	Value  string
	Source CredentialSource
}

// IsZero reports whether the credential carries no value.
func (c Credential) IsZero() bool {
	return c.Value == ""
}

// Redacted returns a short fingerprint of the value that is safe to log.
func (c Credential) Redacted() string {
	return Redact(c.Value)
}

// Redact shortens a secret to its first and last four characters.
func Redact(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if len(v) <= 8 {
		return strings.Repeat("*", len(v))
	}
	return v[:4] + "…" + v[len(v)-4:]
}

// SessionContext is the pair of values every authenticated call depends on.
// AreaHash is empty until it has been resolved once.
type SessionContext struct {
	Token    Credential
	AreaHash string
}

// HasToken reports whether a token is currently known.
func (s SessionContext) HasToken() bool {
	return !s.Token.IsZero()
}
