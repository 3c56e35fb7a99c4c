// Package seal signs and optionally encrypts event payloads before they
// leave the process, and opens them again on the way back in.
//
// Sealed payloads are securecookie values: HMAC-SHA256 authenticated, AES
// encrypted when a block key is set, base64 encoded. A nil *Sealer is a
// pass-through that emits plain JSON.
package seal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/securecookie"
)

// ErrTampered is returned when a sealed payload fails authentication or
// was sealed under a different name.
var ErrTampered = errors.New("seal: payload failed verification")

// Sealer seals values under a name. The same name must be used to open.
type Sealer struct {
	codec *securecookie.SecureCookie
}

// New creates a Sealer. An empty hashKey disables sealing and returns nil.
// blockKey may be empty (sign only) or 16, 24 or 32 bytes (AES).
func New(hashKey, blockKey string) (*Sealer, error) {
	if hashKey == "" {
		return nil, nil //nolint:nilnil // nil Sealer is the pass-through
	}

	var block []byte
	if blockKey != "" {
		block = []byte(blockKey)
	}

	codec := securecookie.New([]byte(hashKey), block)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(0)          // retained state may be read long after it was sealed
	codec.MaxLength(1 << 16) //nolint:mnd // 64 KiB, well above any event

	// Surface a bad block key now rather than on first publish.
	if _, err := codec.Encode("probe", struct{}{}); err != nil {
		return nil, fmt.Errorf("seal: invalid keys: %w", err)
	}

	return &Sealer{codec: codec}, nil
}

// Enabled reports whether payloads are actually sealed.
func (s *Sealer) Enabled() bool {
	return s != nil
}

// Seal encodes v as JSON and, when enabled, seals it under name.
func (s *Sealer) Seal(name string, v any) ([]byte, error) {
	if s == nil {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("seal: encoding %s: %w", name, err)
		}
		return b, nil
	}

	encoded, err := s.codec.Encode(name, v)
	if err != nil {
		return nil, fmt.Errorf("seal: sealing %s: %w", name, err)
	}
	return []byte(encoded), nil
}

// Open reverses Seal into dst.
func (s *Sealer) Open(name string, data []byte, dst any) error {
	if s == nil {
		if err := json.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("seal: decoding %s: %w", name, err)
		}
		return nil
	}

	if err := s.codec.Decode(name, string(data), dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTampered, name, err)
	}
	return nil
}
