package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Setting keys the voice service reads at call time.
const (
	SettingCustomPrompt   = "custom_prompt"
	SettingTransferNumber = "transfer_number"
)

type ClinicSetting struct {
	Key       string `db:"key"`
	Value     string `db:"value"`
	UpdatedAt string `db:"updated_at"`
}

const sqlGetClinicSetting = `
SELECT * FROM clinic_settings WHERE key = $1`

func (s *Store) GetClinicSetting(ctx context.Context, key string) (string, error) {
	var setting ClinicSetting
	err := s.db.GetContext(ctx, &setting, sqlGetClinicSetting, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		s.logger.Error(ctx, "failed to get clinic setting", err)
		return "", fmt.Errorf("failed to get clinic setting: %w", err)
	}
	return setting.Value, nil
}

const sqlUpsertClinicSetting = `
INSERT INTO clinic_settings (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

func (s *Store) SetClinicSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, sqlUpsertClinicSetting, key, value)
	if err != nil {
		s.logger.Error(ctx, "failed to set clinic setting", err)
		return fmt.Errorf("failed to set clinic setting: %w", err)
	}
	return nil
}

// GetCustomPrompt returns the clinic's prompt customization; a missing row is
// an empty customization, not an error.
func (s *Store) GetCustomPrompt(ctx context.Context) (string, error) {
	prompt, err := s.GetClinicSetting(ctx, SettingCustomPrompt)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return prompt, err
}

type serviceTokens struct {
	Token     string `db:"token"`
	Secret    string `db:"secret"`
	CreatedAt string `db:"created_at"`
}

const sqlGetLatestServiceTokens = `
SELECT token, secret, created_at FROM oscar_service_tokens
ORDER BY created_at DESC LIMIT 1`

// ServiceTokens returns the most recently stored OSCAR OAuth1 token pair. The
// OSCAR client fetches these per request, so rotating tokens in the table
// takes effect immediately.
func (s *Store) ServiceTokens(ctx context.Context) (string, string, error) {
	var tokens serviceTokens
	err := s.db.GetContext(ctx, &tokens, sqlGetLatestServiceTokens)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrNotFound
		}
		s.logger.Error(ctx, "failed to get service tokens", err)
		return "", "", fmt.Errorf("failed to get service tokens: %w", err)
	}
	return tokens.Token, tokens.Secret, nil
}

const sqlInsertServiceTokens = `
INSERT INTO oscar_service_tokens (token, secret)
VALUES ($1, $2)`

func (s *Store) SaveServiceTokens(ctx context.Context, token, secret string) error {
	_, err := s.db.ExecContext(ctx, sqlInsertServiceTokens, token, secret)
	if err != nil {
		s.logger.Error(ctx, "failed to save service tokens", err)
		return fmt.Errorf("failed to save service tokens: %w", err)
	}
	return nil
}
