// Package config, client'ın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Config struct'ı tüm ayarları tek bir yerde toplar, böylece
// her yerde ayrı ayrı os.Getenv() çağırmak yerine tek bir Config nesnesi taşırız.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config, client'ın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm ayrı bir struct — her struct tek bir concern'ü temsil eder.
type Config struct {
	API     APIConfig
	Live    LiveConfig
	Storage StorageConfig
	Feed    FeedConfig
	Lang    string // UI dili: "en", "tr"
}

// APIConfig, uzak HTTP API ayarları.
type APIConfig struct {
	BaseURL string        // ör: https://pemblle.com (path'siz kök)
	Timeout time.Duration // tek bir HTTP isteğinin toplam süresi
}

// LiveConfig, WebSocket live kanal ayarları.
type LiveConfig struct {
	URL string // ör: wss://pemblle.com/ws — kullanıcı ID'si bağlanırken eklenir

	// Reconnect: kopan bağlantının backoff ile otomatik yeniden kurulması.
	// Varsayılan KAPALI — açık davranış sadece sayfa/komut geçişinde
	// yeniden bağlanmaktır. Açılırsa MaxBackoff'a kadar üstel bekleme yapılır.
	Reconnect  bool
	MaxBackoff time.Duration
}

// StorageConfig, lokal SQLite store ayarları.
type StorageConfig struct {
	Path   string // SQLite dosya yolu (ör: ~/.pemblle/pemblle.db)
	Secret string // token-at-rest şifreleme anahtarının türetildiği secret
}

// FeedConfig, sayfalı listelerin sayfa boyutları.
type FeedConfig struct {
	PageSize      int // public feed (varsayılan: 10)
	UsersPageSize int // kullanıcı dizini (varsayılan: 12)
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler (development kolaylığı için).
func Load() (*Config, error) {
	// .env dosyasını yükle — dosya yoksa hata vermez, sessizce devam eder.
	_ = godotenv.Load()

	timeoutSec, err := strconv.Atoi(getEnv("PEMBLLE_HTTP_TIMEOUT_SECONDS", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid PEMBLLE_HTTP_TIMEOUT_SECONDS: %w", err)
	}

	pageSize, err := strconv.Atoi(getEnv("PEMBLLE_FEED_PAGE_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid PEMBLLE_FEED_PAGE_SIZE: %w", err)
	}

	usersPageSize, err := strconv.Atoi(getEnv("PEMBLLE_USERS_PAGE_SIZE", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid PEMBLLE_USERS_PAGE_SIZE: %w", err)
	}

	maxBackoffSec, err := strconv.Atoi(getEnv("PEMBLLE_WS_MAX_BACKOFF_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid PEMBLLE_WS_MAX_BACKOFF_SECONDS: %w", err)
	}

	baseURL := getEnv("PEMBLLE_API_URL", "http://localhost:8080")

	// WS URL açıkça verilmemişse API URL'den türetilir (http → ws).
	wsURL := getEnv("PEMBLLE_WS_URL", "")
	if wsURL == "" {
		wsURL = deriveWSURL(baseURL)
	}

	// Storage secret verilmemişse makine-lokal bir varsayılan kullanılır.
	// Bu "kilitli kapı" değil "kapalı kapı" seviyesinde koruma sağlar —
	// ciddi kurulumlarda PEMBLLE_STORAGE_SECRET ayarlanmalıdır.
	secret := getEnv("PEMBLLE_STORAGE_SECRET", "pemblle-local")

	cfg := &Config{
		API: APIConfig{
			BaseURL: baseURL,
			Timeout: time.Duration(timeoutSec) * time.Second,
		},
		Live: LiveConfig{
			URL:        wsURL,
			Reconnect:  getEnv("PEMBLLE_WS_RECONNECT", "false") == "true",
			MaxBackoff: time.Duration(maxBackoffSec) * time.Second,
		},
		Storage: StorageConfig{
			Path:   getEnv("PEMBLLE_DB_PATH", defaultDBPath()),
			Secret: secret,
		},
		Feed: FeedConfig{
			PageSize:      pageSize,
			UsersPageSize: usersPageSize,
		},
		Lang: getEnv("PEMBLLE_LANG", os.Getenv("LANG")),
	}

	return cfg, nil
}

// deriveWSURL, HTTP base URL'den WebSocket URL'i türetir.
// http://host → ws://host/ws, https://host → wss://host/ws
func deriveWSURL(baseURL string) string {
	switch {
	case len(baseURL) >= 8 && baseURL[:8] == "https://":
		return "wss://" + baseURL[8:] + "/ws"
	case len(baseURL) >= 7 && baseURL[:7] == "http://":
		return "ws://" + baseURL[7:] + "/ws"
	default:
		return baseURL + "/ws"
	}
}

// defaultDBPath, kullanıcının home dizini altında varsayılan DB yolunu döner.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./pemblle.db"
	}
	return filepath.Join(home, ".pemblle", "pemblle.db")
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
