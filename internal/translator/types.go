package translator

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAuthorization means the credential is missing or was rejected.
	ErrAuthorization = errors.New("authorization error")
	// ErrTransport covers connection failures and unexpected HTTP statuses.
	ErrTransport = errors.New("transport error")
	// ErrResponseShape means the backend answered with a payload that does
	// not match the expected schema.
	ErrResponseShape = errors.New("response shape error")
)

type ServiceConfig struct {
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	Model       string        `mapstructure:"model" json:"model"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Temperature float64       `mapstructure:"temperature" json:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
}

// Provider translates a batch of msgids in a single exchange with its
// backend. The returned map is keyed by msgid and may omit entries; callers
// treat a missing key as "not translated this run".
type Provider interface {
	Name() string
	Translate(ctx context.Context, msgids []string, lang string) (map[string]string, error)
}

// zipTranslations pairs msgids with translations by position, stopping at the
// shorter of the two. A later duplicate msgid overwrites an earlier one.
func zipTranslations(msgids []string, translations []any) map[string]string {
	n := len(msgids)
	if len(translations) < n {
		n = len(translations)
	}

	result := make(map[string]string, n)
	for i := 0; i < n; i++ {
		s, _ := translations[i].(string)
		result[msgids[i]] = s
	}
	return result
}
