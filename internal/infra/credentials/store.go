package credentials

import (
	"context"
	"errors"
	"strings"

	"renderlab/internal/infra"
	"renderlab/internal/sqlinline"
)

const (
	ProviderGemini = "gemini"
)

// Credential is a stored provider token plus its health flag. NeedsReselect
// is raised when the backend rejects the token so an operator knows to swap
// it out.
type Credential struct {
	Token         string `json:"-"`
	NeedsReselect bool   `json:"needs_reselect"`
}

type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	cred, err := s.Credential(ctx, ProviderGemini)
	if err != nil {
		return "", err
	}
	return cred.Token, nil
}

func (s *Store) Credential(ctx context.Context, provider string) (Credential, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectCredential, provider)
	var cred Credential
	if err := row.Scan(&cred.Token, &cred.NeedsReselect); err != nil {
		if infra.IsNoRows(err) {
			return Credential{}, nil
		}
		return Credential{}, err
	}
	cred.Token = strings.TrimSpace(cred.Token)
	return cred, nil
}

// SetGeminiAPIKey stores a fresh key and clears any reselect flag.
func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("gemini api key is required")
	}
	_, err := s.sql.Exec(ctx, sqlinline.QUpsertCredential, ProviderGemini, key)
	return err
}

// FlagReselect marks the provider's credential as rejected by the backend.
func (s *Store) FlagReselect(ctx context.Context, provider string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QFlagCredentialReselect, provider)
	return err
}
