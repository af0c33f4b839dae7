package credential

import (
	"fmt"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "gitjot"

// defaultFileKey encrypts the file backend when no password is configured.
const defaultFileKey = "gitjot-file-key"

// platformBackends are tried in order when no backend is forced; the
// encrypted file is the last resort on headless machines.
var platformBackends = []keyring.BackendType{
	keyring.KeychainBackend,
	keyring.SecretServiceBackend,
	keyring.WinCredBackend,
	keyring.PassBackend,
	keyring.FileBackend,
}

// KeyringOptions selects and configures the secret backend.
type KeyringOptions struct {
	// Backend forces one backend by name (keychain, secret-service,
	// wincred, pass, file). Empty tries the platform backends in order.
	Backend string

	// FileDir holds the encrypted file backend.
	FileDir string

	// FilePassword encrypts the file backend; empty uses a built-in key.
	FilePassword string
}

// backends resolves a backend name to the list passed to keyring.Open.
func backends(name string) ([]keyring.BackendType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		return platformBackends, nil
	}
	for _, b := range platformBackends {
		if string(b) == name {
			return []keyring.BackendType{b}, nil
		}
	}
	return nil, fmt.Errorf("unknown keyring backend %q", name)
}

// OpenKeyring opens the secret store holding the credential.
func OpenKeyring(opts KeyringOptions) (keyring.Keyring, error) {
	allowed, err := backends(opts.Backend)
	if err != nil {
		return nil, err
	}

	password := opts.FilePassword
	if password == "" {
		password = defaultFileKey
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		AllowedBackends:          allowed,
		FileDir:                  opts.FileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(password),
		KeychainTrustApplication: true,
		LibSecretCollectionName:  serviceName,
		PassPrefix:               serviceName,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}
