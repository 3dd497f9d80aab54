package translator

import (
	"context"
	"fmt"
	"strings"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleService sends the batch to Google Cloud Translation in one call.
// Without a credentials file the client falls back to Application Default
// Credentials.
type GoogleService struct {
	opts []option.ClientOption
}

func NewGoogleService(cfg ServiceConfig) *GoogleService {
	s := &GoogleService{}
	if cfg.Credentials != "" {
		s.opts = append(s.opts, option.WithCredentialsFile(cfg.Credentials))
	}
	if cfg.BaseURL != "" {
		s.opts = append(s.opts, option.WithEndpoint(cfg.BaseURL))
	}
	return s
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, msgids []string, lang string) (map[string]string, error) {
	target, err := parseLanguage(lang)
	if err != nil {
		return nil, err
	}
	if len(msgids) == 0 {
		return map[string]string{}, nil
	}

	client, err := translate.NewClient(ctx, s.opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create client: %v", ErrAuthorization, err)
	}
	defer client.Close()

	translations, err := client.Translate(ctx, msgids, target, &translate.Options{
		Source: language.English,
		Format: translate.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: translation failed: %v", ErrTransport, err)
	}

	texts := make([]any, len(translations))
	for i, t := range translations {
		texts[i] = t.Text
	}
	return zipTranslations(msgids, texts), nil
}

// parseLanguage accepts gettext locale names such as "pt_BR" as well as
// BCP 47 tags.
func parseLanguage(lang string) (language.Tag, error) {
	if strings.TrimSpace(lang) == "" {
		return language.Und, fmt.Errorf("invalid target language: catalog has no Language header")
	}
	// Drop an encoding or modifier suffix ("sr_RS@latin", "de_DE.UTF-8").
	if idx := strings.IndexAny(lang, ".@"); idx > 0 {
		lang = lang[:idx]
	}
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("invalid target language %q: %w", lang, err)
	}
	return tag, nil
}
