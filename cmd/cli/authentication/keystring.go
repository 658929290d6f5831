package authentication

// Access tokens issued by the identity provider are kept in the OS keyring
// between CLI invocations.
import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "mediahub-cli"
	tokenKey    = "access_token"
)

// StoreToken saves the access token for later commands.
func StoreToken(token string) error {
	return keyring.Set(serviceName, tokenKey, token)
}

// GetToken returns the stored token or "" when none was saved.
func GetToken() (string, error) {
	token, err := keyring.Get(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return token, err
}

// DeleteToken forgets the stored token. Deleting a missing token is not an error.
func DeleteToken() error {
	err := keyring.Delete(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
