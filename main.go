// Package main, pemblle terminal client'ının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//  1. Config'i yükle
//  2. Lokal SQLite store'u başlat
//  3. i18n çevirilerini yükle
//  4. API katmanını oluştur (HTTP client + typed endpoint grupları)
//  5. Session store'u oluştur ve varsa kayıtlı oturumu geri yükle
//  6. Service'leri oluştur (API'ler + session + mutation'lar ile)
//  7. Live kanalı kur (dispatcher + service abonelikleri)
//  8. Cobra komut ağacını kur ve çalıştır
//
// Global değişken YOK — her şey burada oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ihsandara/PemBlle/config"
	"github.com/ihsandara/PemBlle/database"
	"github.com/ihsandara/PemBlle/pkg"
	"github.com/ihsandara/PemBlle/pkg/i18n"
	"github.com/ihsandara/PemBlle/session"
	"github.com/ihsandara/PemBlle/ws"
)

// settingLang, settings tablosunda son seçilen dilin anahtarıdır.
const settingLang = "lang"

// App, tüm katmanların bağlanmış halini taşıyan container.
// Komutlar sadece bu struct üzerinden katmanlara erişir.
type App struct {
	Config     *config.Config
	DB         *database.DB
	Loc        *i18n.Localizer
	APIs       *APIs
	Sessions   session.Store
	Services   *Services
	Dispatcher *ws.Dispatcher
	Channel    *ws.Channel
}

func main() {
	// CLI çıktısı stdout'a gider; log satırları (debug/uyarı) stderr'e.
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	app, err := newApp()
	if err != nil {
		log.Fatalf("[main] failed to start: %v", err)
	}
	defer app.Close()

	if err := newRootCommand(app).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", errText(app.Loc, err))
		os.Exit(1)
	}
}

// newApp, tüm katmanları sırasıyla oluşturup bağlar.
func newApp() (*App, error) {
	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// ─── 2. Lokal store ───
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to access embedded migrations: %w", err)
	}
	db, err := database.New(cfg.Storage.Path, migrationsFS)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local store: %w", err)
	}

	// ─── 3. i18n ───
	localesFS, err := fs.Sub(i18n.EmbeddedLocales, "locales")
	if err != nil {
		return nil, fmt.Errorf("failed to access embedded locales: %w", err)
	}
	if err := i18n.Load(localesFS); err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	// Dil sırası: env (PEMBLLE_LANG / LANG) > `pemblle lang` ile kaydedilen
	// tercih > varsayılan. Env açıkça ayarlanmışsa kayıtlı tercihi ezer.
	lang := i18n.DetectLanguage(cfg.Lang)
	if cfg.Lang == "" {
		if saved, err := db.GetSetting(context.Background(), settingLang); err != nil {
			log.Printf("[main] failed to read saved language: %v", err)
		} else if saved != "" {
			lang = i18n.DetectLanguage(saved)
		}
	}
	loc := i18n.NewLocalizer(lang)

	// ─── 4. API katmanı ───
	//
	// Token closure'ı session store'a geç bağlanır: Client önce kurulur
	// (AuthAPI'ye lazım), store sonra (AuthAPI'ye ihtiyacı var). Closure
	// her istekte store'un O ANKİ token'ını okur.
	var sessions session.Store
	apis := initAPIs(cfg, func() string {
		if sessions == nil {
			return ""
		}
		return sessions.Token()
	})

	// ─── 5. Session ───
	sessions = session.NewStore(db, apis.Auth, cfg.Storage.Secret)

	restoreCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := sessions.Restore(restoreCtx); err != nil && !errors.Is(err, pkg.ErrNoSession) {
		log.Printf("[main] session restore failed: %v", err)
	}

	// ─── 6. Service katmanı ───
	svcs := initServices(cfg, apis, sessions)

	// ─── 7. Live kanal ───
	dispatcher, channel := initLive(cfg, svcs)

	return &App{
		Config:     cfg,
		DB:         db,
		Loc:        loc,
		APIs:       apis,
		Sessions:   sessions,
		Services:   svcs,
		Dispatcher: dispatcher,
		Channel:    channel,
	}, nil
}

// Close, açık kaynakları kapatır (ters sırayla).
func (a *App) Close() {
	if a.Channel != nil {
		_ = a.Channel.Close()
	}
	if a.Services != nil {
		a.Services.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
