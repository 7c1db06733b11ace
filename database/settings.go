// Package database — settings key-value deposu.
//
// Küçük, oturumdan bağımsız client tercihlerini (ör. son seçilen dil)
// kalıcı tutar. Şema migrations/001_init.sql'deki settings tablosudur.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetSetting, bir ayarı okur. Kayıt yoksa boş string döner —
// "hiç ayarlanmamış" bir hata durumu değildir.
func (db *DB) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := db.Conn.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting, ayarı yazar; varsa üstüne yazar (upsert).
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	if _, err := db.Conn.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}
