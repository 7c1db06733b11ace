// Package main — Terminal çıktı yardımcıları.
//
// Komutlar ham struct basmaz; buradaki fonksiyonlar modelleri insan
// okunur satırlara çevirir. Hata metinleri sentinel error'lara göre
// lokalize edilir — kullanıcı Go hata zinciri değil anlamlı mesaj görür.
package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ihsandara/PemBlle/models"
	"github.com/ihsandara/PemBlle/pkg"
	"github.com/ihsandara/PemBlle/pkg/i18n"
)

// errText, hatayı kullanıcıya gösterilecek metne çevirir.
// Bilinen sentinel'ler lokalize edilir; bilinmeyenler olduğu gibi döner.
func errText(loc *i18n.Localizer, err error) string {
	switch {
	case errors.Is(err, pkg.ErrInvalidCredentials):
		return loc.T("auth.invalidCredentials")
	case errors.Is(err, pkg.ErrUnverifiedAccount):
		return loc.T("auth.unverifiedAccount")
	case errors.Is(err, pkg.ErrNoSession), errors.Is(err, pkg.ErrUnauthorized):
		return loc.T("auth.noSession")
	case errors.Is(err, pkg.ErrNetwork):
		return loc.T("errors.network")
	case errors.Is(err, pkg.ErrNotFound):
		return loc.T("errors.notFound")
	case errors.Is(err, pkg.ErrForbidden):
		return loc.T("errors.forbidden")
	case errors.Is(err, pkg.ErrMutationInFlight):
		return loc.T("errors.inFlight")
	case errors.Is(err, pkg.ErrInternal):
		return loc.T("errors.internal")
	default:
		return err.Error()
	}
}

// fmtTime, zaman damgasını kısa okunur biçime çevirir.
func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("02 Jan 15:04")
}

// printTell, tek bir tell'i cevabı ve reply'larıyla basar.
func printTell(loc *i18n.Localizer, t *models.Tell) {
	who := loc.T("feed.anonymous")
	if t.Receiver != nil {
		who = "@" + t.Receiver.Username
	}
	tag := ""
	if t.IsFromFollowing {
		tag = " [" + loc.T("feed.fromFollowing") + "]"
	}
	fmt.Printf("─ %s  %s%s  (%s)\n", t.ID, who, tag, fmtTime(t.CreatedAt))
	fmt.Printf("  Q: %s\n", t.Content)
	if t.Answer != nil {
		fmt.Printf("  A: %s  (%s)\n", t.Answer.Content, fmtTime(t.Answer.CreatedAt))
		for i := range t.Answer.Replies {
			r := &t.Answer.Replies[i]
			fmt.Printf("     ↳ %s  (%s)\n", r.Content, fmtTime(r.CreatedAt))
		}
	}
}

// printTells, tell listesini basar; boşsa lokalize boş mesajı gösterir.
func printTells(loc *i18n.Localizer, tells []models.Tell) {
	if len(tells) == 0 {
		fmt.Println(loc.T("feed.empty"))
		return
	}
	for i := range tells {
		printTell(loc, &tells[i])
	}
}

// printChat, sohbet listesi satırı basar.
func printChat(loc *i18n.Localizer, c *models.Chat, ownUserID string) {
	name := "?"
	if other := c.OtherParticipant(ownUserID); other != nil {
		name = "@" + other.Username
	}
	line := fmt.Sprintf("%s  %s", c.ID, name)
	if c.LastMessage != nil {
		line += "  — " + truncate(c.LastMessage.Content, 40)
	}
	if c.UnreadCount > 0 {
		line += "  (" + loc.TWithParams("chat.unreadBadge",
			map[string]string{"count": strconv.Itoa(c.UnreadCount)}) + ")"
	}
	fmt.Println(line)
}

// printMessage, sohbet içi tek mesaj satırı basar.
// Kendi mesajlarımız "me", bekleyen optimistic mesajlar "…" ile işaretlenir.
func printMessage(m *models.Message, ownUserID string) {
	who := "them"
	if m.SenderID == ownUserID {
		who = "me"
	}
	if m.Sender != nil {
		who = "@" + m.Sender.Username
	}
	mark := ""
	if m.Pending {
		mark = " …"
	}
	fmt.Printf("[%s] %s: %s%s\n", fmtTime(m.CreatedAt), who, m.Content, mark)
}

// truncate, metni en fazla n rune'a kısaltır.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
