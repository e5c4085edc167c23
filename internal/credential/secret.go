package credential

import "encoding/json"

const redacted = "[redacted]"

// Secret is an opaque credential handle. Its value is only reachable through
// Reveal; every formatting path prints a redacted placeholder.
type Secret struct {
	value string
}

// NewSecret wraps a raw credential value.
func NewSecret(v string) Secret {
	return Secret{value: v}
}

// Reveal returns the raw credential for use in an outgoing request.
func (s Secret) Reveal() string {
	return s.value
}

// IsZero reports whether the secret holds no value.
func (s Secret) IsZero() bool {
	return s.value == ""
}

// Preview returns a short non-sensitive form suitable for logs: the first
// eight and last four characters, or "***" for short values.
func (s Secret) Preview() string {
	if len(s.value) > 12 {
		return s.value[:8] + "..." + s.value[len(s.value)-4:]
	}
	return "***"
}

func (s Secret) String() string {
	if s.value == "" {
		return ""
	}
	return redacted
}

func (s Secret) GoString() string {
	return "credential.Secret{" + redacted + "}"
}

// MarshalJSON never emits the raw value.
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
