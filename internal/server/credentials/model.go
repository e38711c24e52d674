package credentials

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vcalc/internal/common"
)

// Credential is one login and the secret shared with its client.
type Credential struct {
	Login  string
	Secret string
}

// ParseCredential parses the "login:secret" form used by the database file
// and by the seed option.
func ParseCredential(s string) (Credential, error) {
	login, secret, ok := strings.Cut(s, ":")
	if !ok || !validLogin(login) {
		return Credential{}, fmt.Errorf("%w: %q", common.ErrorInvalidLogin, login)
	}
	if !validSecret(secret) {
		return Credential{}, common.ErrorInvalidSecret
	}
	return Credential{Login: login, Secret: secret}, nil
}
