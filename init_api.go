// Package main — API katmanı başlatma.
//
// initAPIs, paylaşılan HTTP client'ı ve typed endpoint gruplarını oluşturur.
// Her grup kendi interface'inin arkasındadır — service'ler test'te fake
// API'lerle kurulabilir.
package main

import (
	"github.com/ihsandara/PemBlle/api"
	"github.com/ihsandara/PemBlle/config"
)

// APIs, tüm API grup instance'larını tutan container struct.
type APIs struct {
	Client *api.Client
	Auth   api.AuthAPI
	User   api.UserAPI
	Tell   api.TellAPI
	Chat   api.ChatAPI
}

// initAPIs, constructor.
// token closure'ı her istekte güncel bearer token'ı sağlar.
func initAPIs(cfg *config.Config, token api.TokenFunc) *APIs {
	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, token)

	return &APIs{
		Client: client,
		Auth:   api.NewAuthAPI(client),
		User:   api.NewUserAPI(client),
		Tell:   api.NewTellAPI(client),
		Chat:   api.NewChatAPI(client),
	}
}
