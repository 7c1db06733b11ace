package ws

import (
	"log"
	"sync"
)

// Handler, bir event türüne abone olan callback.
// Callback'ler read loop goroutine'inde SIRAYLA çağrılır — uzun süren iş
// yapacaksa kendi goroutine'ini açmalıdır, yoksa sonraki event'ler bekler.
type Handler func(Event)

// Dispatcher, event türü → abone listesi kaydını tutar ve gelen
// event'leri ilgili abonelere dağıtır (Observer pattern).
//
// Subscribe bağlantı kurulmadan önce de sonra da çağrılabilir —
// Channel ve Dispatcher birbirinden bağımsız yaşar.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewDispatcher, constructor.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe, bir event türüne handler ekler.
// Aynı türe birden fazla handler eklenebilir — geliş sırasıyla çağrılırlar.
func (d *Dispatcher) Subscribe(t EventType, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = append(d.handlers[t], h)
}

// Dispatch, event'i türüne abone tüm handler'lara iletir.
// Abonesi olmayan türler sessizce düşürülür.
// Handler panic'i yakalanır — tek bozuk abone tüm kanalı düşürmemelidir.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	hs := d.handlers[ev.Type]
	d.mu.RUnlock()

	for _, h := range hs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[ws] handler panic for %s event: %v", ev.Type, r)
				}
			}()
			h(ev)
		}()
	}
}
