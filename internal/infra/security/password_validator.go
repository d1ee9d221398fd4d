package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 50
	minPasswordScore  = 2
)

// ValidatePassword enforces length bounds and an entropy floor on candidate
// passwords. User-derived inputs (username, email) are penalized by the
// strength estimator so passwords echoing them score low.
func ValidatePassword(password string, userInputs ...string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLength)
	}

	result := zxcvbn.PasswordStrength(password, userInputs)
	if result.Score < minPasswordScore {
		return fmt.Errorf("password is too weak")
	}

	return nil
}
