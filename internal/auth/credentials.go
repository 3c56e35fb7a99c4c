package auth

import (
	"fmt"

	"github.com/nerrad567/thermolab/internal/infrastructure/config"
)

// HashCredentials turns the configured plaintext table into Credentials.
// Plaintext passwords do not outlive this call.
func HashCredentials(entries []config.CredentialConfig, params HashParams) ([]Credential, error) {
	creds := make([]Credential, 0, len(entries))
	for _, e := range entries {
		role, err := ParseRole(e.Role)
		if err != nil {
			return nil, fmt.Errorf("credential %q: %w", e.Username, err)
		}
		hash, err := HashPasswordWith(e.Password, params)
		if err != nil {
			return nil, fmt.Errorf("hashing password for %q: %w", e.Username, err)
		}
		creds = append(creds, Credential{
			Username:     e.Username,
			PasswordHash: hash,
			Role:         role,
		})
	}
	return creds, nil
}

// NewGateFromConfig hashes entries and builds a Gate over them.
func NewGateFromConfig(entries []config.CredentialConfig, params HashParams) (*Gate, error) {
	creds, err := HashCredentials(entries, params)
	if err != nil {
		return nil, err
	}
	return NewGate(creds)
}
