package deferred

import "encoding/json"

// Secret is an opaque reference to a Secrets Manager secret. The builder
// passes it through to the platform and never reads its content.
type Secret struct {
	ID string
}

// SecretsManager returns a reference to the secret with the given id.
func SecretsManager(id string) Secret {
	return Secret{ID: id}
}

// IsZero reports whether no secret was configured.
func (s Secret) IsZero() bool {
	return s.ID == ""
}

// Token renders the dynamic reference the platform resolves at deploy time.
func (s Secret) Token() string {
	return "{{resolve:secretsmanager:" + s.ID + ":SecretString:::}}"
}

// String identifies the secret without rendering the dynamic reference.
func (s Secret) String() string {
	return "secretsmanager:" + s.ID
}

// MarshalJSON implements json.Marshaler.
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Token())
}

// MarshalYAML implements yaml.Marshaler.
func (s Secret) MarshalYAML() (any, error) {
	return s.Token(), nil
}
