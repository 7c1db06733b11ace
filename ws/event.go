// Package ws, sunucunun gerçek zamanlı event kanalına client-side adapter'dır.
//
// Mimari:
// - Channel: WebSocket bağlantısının yaşam döngüsünü yöneten yapı (state machine)
// - Dispatcher: Event türüne göre abone callback'lerini çağıran dağıtıcı
// - Event: Sunucudan gelen mesaj formatı
//
// Event akışı:
// 1. Sunucu bir olay yayınlar (yeni tell, yeni mesaj, cevap, reply)
// 2. Channel'ın read loop'u frame'i okur ve Event'e parse eder
// 3. Dispatcher, event türüne abone olan tüm callback'leri sırayla çağırır
// 4. Service katmanı callback içinde lokal listeleri günceller (Prepend/Upsert)
package ws

import (
	"encoding/json"
	"fmt"

	"github.com/ihsandara/PemBlle/models"
)

// EventType, sunucudan gelen event'in türü.
type EventType string

// Sunucu → Client event türleri
const (
	EventNewTell      EventType = "new_tell"      // Kullanıcıya yeni tell geldi
	EventNewMessage   EventType = "new_message"   // Bir sohbete yeni mesaj geldi
	EventTellAnswered EventType = "tell_answered" // Gönderilen tell cevaplandı
	EventNewReply     EventType = "new_reply"     // Bir cevaba reply yazıldı
)

// Event, sunucudan gelen ham frame.
//
// Sunucu payload'ı flat JSON olarak gönderir: {"type": "new_tell", "tell": {...}}.
// Önce sadece type alanı parse edilir, payload Raw'da saklanır —
// abone hangi türle ilgileniyorsa ilgili decode metodunu çağırır.
type Event struct {
	Type EventType
	Raw  json.RawMessage
}

// ParseEvent, ham frame'den Event oluşturur.
// Tanınmayan türler hata DEĞİLDİR — sunucu yeni event türleri ekleyebilir,
// eski client'lar onları sessizce yoksaymalıdır. Dispatcher abonesi olmayan
// türleri zaten düşürür.
func ParseEvent(frame []byte) (Event, error) {
	var head struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(frame, &head); err != nil {
		return Event{}, fmt.Errorf("malformed event frame: %w", err)
	}
	if head.Type == "" {
		return Event{}, fmt.Errorf("event frame missing type field")
	}
	return Event{Type: head.Type, Raw: json.RawMessage(frame)}, nil
}

// NewTellPayload, new_tell event'inin gövdesi.
type NewTellPayload struct {
	Tell models.Tell `json:"tell"`
}

// NewMessagePayload, new_message event'inin gövdesi.
type NewMessagePayload struct {
	ChatID  string         `json:"chat_id"`
	Message models.Message `json:"message"`
}

// TellAnsweredPayload, tell_answered event'inin gövdesi.
type TellAnsweredPayload struct {
	Tell   models.Tell   `json:"tell"`
	Answer models.Answer `json:"answer"`
}

// NewReplyPayload, new_reply event'inin gövdesi.
type NewReplyPayload struct {
	TellID string       `json:"tell_id"`
	Reply  models.Reply `json:"reply"`
}

// DecodeNewTell, new_tell payload'ını çözer.
func (e Event) DecodeNewTell() (*NewTellPayload, error) {
	var p NewTellPayload
	if err := json.Unmarshal(e.Raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode new_tell payload: %w", err)
	}
	return &p, nil
}

// DecodeNewMessage, new_message payload'ını çözer.
func (e Event) DecodeNewMessage() (*NewMessagePayload, error) {
	var p NewMessagePayload
	if err := json.Unmarshal(e.Raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode new_message payload: %w", err)
	}
	return &p, nil
}

// DecodeTellAnswered, tell_answered payload'ını çözer.
func (e Event) DecodeTellAnswered() (*TellAnsweredPayload, error) {
	var p TellAnsweredPayload
	if err := json.Unmarshal(e.Raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode tell_answered payload: %w", err)
	}
	return &p, nil
}

// DecodeNewReply, new_reply payload'ını çözer.
func (e Event) DecodeNewReply() (*NewReplyPayload, error) {
	var p NewReplyPayload
	if err := json.Unmarshal(e.Raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode new_reply payload: %w", err)
	}
	return &p, nil
}
