// Package main — Live kanal başlatma.
//
// initLive, event dispatcher'ını kurar, service'lerin live aboneliklerini
// bağlar ve WebSocket kanalını oluşturur. Kanal burada AÇILMAZ — bağlanma
// oturum gerektiren komutların (watch) işidir.
package main

import (
	"github.com/ihsandara/PemBlle/config"
	"github.com/ihsandara/PemBlle/ws"
)

// initLive, constructor.
//
// Abonelik sırası önemsizdir ama bağlanmadan ÖNCE yapılmalıdır —
// dispatcher'a geç eklenen handler, abonelikten önce gelen event'leri kaçırır.
func initLive(cfg *config.Config, svcs *Services) (*ws.Dispatcher, *ws.Channel) {
	dispatcher := ws.NewDispatcher()

	// Service'ler kendi event'lerine abone olur:
	// feed → new_tell, tell_answered, new_reply
	// chat → new_message
	svcs.Feed.BindLive(dispatcher)
	svcs.Chat.BindLive(dispatcher)

	channel := ws.NewChannel(cfg.Live.URL, dispatcher, ws.Options{
		Reconnect:  cfg.Live.Reconnect,
		MaxBackoff: cfg.Live.MaxBackoff,
	})

	return dispatcher, channel
}
