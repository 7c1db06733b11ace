// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya client tarafı hata taksonomisini tanımlar.
//
// Go'da error'lar basit değerlerdir (string taşıyan struct'lar).
// errors.New() ile sabit error değişkenleri tanımlarız.
// Böylece error karşılaştırması string yerine referans ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
//
// Bu, typo'ya açık string karşılaştırmasından çok daha güvenlidir.
package pkg

import "errors"

// Client tarafı hata taksonomisi.
// api katmanı HTTP status code'larını bu error'lara map'ler (sunucunun
// tersi yönde: sunucu error → status çevirir, client status → error çevirir).
// Service katmanı ve CLI errors.Is ile dallanır.
var (
	// ErrNetwork: İstek hiç tamamlanamadı — DNS, bağlantı, timeout.
	// Read-only fetch'lerde view boş duruma düşer, mutation'larda rollback tetikler.
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized: 401 — token yok, geçersiz veya süresi dolmuş.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials: Login'de 401 — email/şifre yanlış.
	// ErrUnverifiedAccount'tan AYRI tutulur; UI farklı akışa yönlendirir.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnverifiedAccount: Login'de 403 + code="unverified" —
	// hesap var ama email doğrulanmamış. "Doğrulama mailini tekrar gönder"
	// akışına yönlendirilir, genel hata GÖSTERİLMEZ.
	ErrUnverifiedAccount = errors.New("account not verified")

	// ErrForbidden: 403 — yetki yok (örn. başkasının sohbetine mesaj).
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound: 404 — kullanıcı/sohbet/tell sunucuda yok.
	ErrNotFound = errors.New("not found")

	// ErrValidation: Client tarafı alan doğrulaması — istek sunucuya
	// HİÇ gönderilmez, inline alan mesajı olarak gösterilir.
	ErrValidation = errors.New("validation error")

	// ErrBadRequest: Sunucunun reddettiği 4xx (validation dışı).
	ErrBadRequest = errors.New("bad request")

	// ErrInternal: 5xx — sunucu tarafı hata.
	ErrInternal = errors.New("internal error")

	// ErrMutationInFlight: Aynı mantıksal aksiyonun ikinci denemesi,
	// ilki hâlâ sürerken geldi (çift tıklama). İkinci deneme uygulanmaz.
	ErrMutationInFlight = errors.New("mutation already in flight")

	// ErrNoSession: Oturum gerektiren bir işlem, oturum yokken çağrıldı.
	ErrNoSession = errors.New("no active session")
)
