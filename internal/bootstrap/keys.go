package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/guildgate/guildgate/internal/crypto"
)

// ResolveTokenKey produces the symmetric key verification tokens are
// encrypted under. With a passphrase the key is derived deterministically,
// so every process configured with the same passphrase accepts each
// other's tokens. Without one a random key is generated: tokens then die
// with the process and cannot be redeemed by any other instance.
func ResolveTokenKey(passphrase string, logger *slog.Logger) (*crypto.Key, error) {
	if passphrase != "" {
		key, err := crypto.KeyFromPassphrase(passphrase)
		if err != nil {
			return nil, fmt.Errorf("derive token key: %w", err)
		}
		return key, nil
	}

	logger.Warn("no token passphrase configured, using a random per-process key",
		"consequence", "tokens become invalid on restart and across replicas")

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate token key: %w", err)
	}
	return key, nil
}
