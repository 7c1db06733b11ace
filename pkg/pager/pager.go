// Package pager — Generic offset/limit tabanlı sayfalı liste motoru.
//
// Pager, "fetch-and-append" pattern'ini tek bir yerde toplar:
// public feed, kullanıcı dizini gibi sayfalı listelerin tamamı bu motoru
// kullanır. Her sayfa mevcut listenin SONUNA eklenir, sunucu sırası korunur
// ve aynı ID'li item asla iki kez listeye girmez.
//
// "Sayfa doluysa devamı vardır" heuristic'i:
// HasMore = len(sayfa) == pageSize. Sunucu toplam sayı dönmediği için
// bu bir YAKLAŞIKLIKTIR, garanti değil — toplam tam pageSize'ın katıysa
// son sayfadan sonra bir boş sayfa daha çekilir. Bilinçli bir tasarım
// kararı olarak böyle bırakılmıştır (sunucu sözleşmesi count vermiyor).
//
// Concurrency kuralı:
// Bir sayfa yüklemesi sürerken gelen ikinci LoadNextPage çağrısı NO-OP'tur.
// İki in-flight isteğin sırasız append etmesi bu kuralla imkânsızlaşır —
// sayfa N+1, sayfa N'in yanıtı işlenmeden asla eklenmez.
package pager

import (
	"context"
	"sync"
)

// Item, pager'a girebilen tiplerin sözleşmesi: dedupe için kimlik döner.
type Item interface {
	ItemID() string
}

// Page, tek bir yükleme sonucunu taşır.
// Items: bu çağrıda listeye EKLENEN item'lar (dedupe sonrası).
// HasMore: heuristic'e göre devam sayfası beklenip beklenmediği.
type Page[T Item] struct {
	Items   []T
	HasMore bool
}

// FetchFunc, bir sayfayı uzaktan getiren fonksiyon.
// Pager transport bilmez — api katmanı bu closure ile bağlanır.
type FetchFunc[T Item] func(ctx context.Context, limit, offset int) ([]T, error)

// Pager, generic sayfalı liste motoru.
//
// Generic nedir? (Go 1.18+)
// T tip parametresidir — pager oluşturulurken concrete tip belirtilir:
//
//	p := pager.New[models.Tell](fetchFeed, 10)
//	page, err := p.LoadFirstPage(ctx)
//	page, err = p.LoadNextPage(ctx)
//
// Thread safety: tüm state tek mutex ile korunur. Network çağrısı
// sırasında mutex TUTULMAZ (uzun süre kilitlenmesin diye) — in-flight
// bayrağı ve generation sayacı tutarlılığı sağlar.
type Pager[T Item] struct {
	mu       sync.Mutex
	fetch    FetchFunc[T]
	pageSize int

	items   []T
	seen    map[string]bool
	offset  int
	hasMore bool
	started bool

	// inFlight: şu anda bir sayfa yüklemesi sürüyor mu.
	inFlight bool

	// gen: Reset/LoadFirstPage her çağrıldığında artar.
	// Network yanıtı döndüğünde gen değişmişse yanıt ESKİMİŞTİR ve
	// sessizce atılır — görünümden ayrılan kullanıcının geciken yanıtı
	// yeni state'e uygulanmaz.
	gen int
}

// New, yeni bir Pager oluşturur. pageSize pozitif olmalıdır.
func New[T Item](fetch FetchFunc[T], pageSize int) *Pager[T] {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Pager[T]{
		fetch:    fetch,
		pageSize: pageSize,
		seen:     make(map[string]bool),
		hasMore:  true,
	}
}

// LoadFirstPage, listeyi sıfırlar ve ilk sayfayı yükler.
// Boş ilk sayfa geçerli bir terminal durumdur, hata DEĞİLDİR.
func (p *Pager[T]) LoadFirstPage(ctx context.Context) (Page[T], error) {
	p.mu.Lock()
	p.gen++
	p.items = nil
	p.seen = make(map[string]bool)
	p.offset = 0
	p.hasMore = true
	p.started = true
	p.inFlight = false
	p.mu.Unlock()

	return p.loadNext(ctx)
}

// LoadNextPage, bir sonraki sayfayı yükleyip listeye ekler.
//
// Davranış:
//   - Henüz LoadFirstPage çağrılmamışsa ilk sayfa gibi davranır.
//   - Bir yükleme zaten sürüyorsa NO-OP: boş Page döner, hata yok.
//   - HasMore false ise NO-OP: liste sonuna gelinmiştir.
func (p *Pager[T]) LoadNextPage(ctx context.Context) (Page[T], error) {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return p.LoadFirstPage(ctx)
	}
	p.mu.Unlock()

	return p.loadNext(ctx)
}

// loadNext, in-flight guard + generation kontrolü ile tek sayfa yükler.
func (p *Pager[T]) loadNext(ctx context.Context) (Page[T], error) {
	p.mu.Lock()
	if p.inFlight || !p.hasMore {
		// No-op: süren istek varken ikinci istek başlatılmaz,
		// biten listeden yeni sayfa istenmez.
		hasMore := p.hasMore
		p.mu.Unlock()
		return Page[T]{HasMore: hasMore}, nil
	}
	p.inFlight = true
	gen := p.gen
	offset := p.offset
	p.mu.Unlock()

	// Network çağrısı mutex DIŞINDA yapılır.
	raw, err := p.fetch(ctx, p.pageSize, offset)

	p.mu.Lock()
	defer p.mu.Unlock()

	// Yanıt döndüğünde pager sıfırlanmışsa (yeni generation) veya context
	// iptal edilmişse yanıt stale'dir — state'e uygulanmaz.
	if gen != p.gen {
		return Page[T]{HasMore: p.hasMore}, nil
	}
	p.inFlight = false

	if err != nil {
		return Page[T]{HasMore: p.hasMore}, err
	}
	if ctx.Err() != nil {
		return Page[T]{HasMore: p.hasMore}, ctx.Err()
	}

	// Dedupe: zaten listede olan ID'ler atlanır, sunucu sırası korunur.
	appended := make([]T, 0, len(raw))
	for _, it := range raw {
		id := it.ItemID()
		if p.seen[id] {
			continue
		}
		p.seen[id] = true
		appended = append(appended, it)
	}

	p.items = append(p.items, appended...)
	p.offset += len(raw)
	p.hasMore = len(raw) == p.pageSize

	return Page[T]{Items: appended, HasMore: p.hasMore}, nil
}

// Items, biriken listenin kopyasını döner.
// Kopya dönülür — çağıran tarafın slice'ı mutate etmesi pager'ı bozamaz.
func (p *Pager[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

// HasMore, devam sayfası beklenip beklenmediğini döner (heuristic).
func (p *Pager[T]) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Len, biriken item sayısını döner.
func (p *Pager[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Loading, şu anda bir sayfa yüklemesi sürüp sürmediğini döner.
func (p *Pager[T]) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// Reset, listeyi boşaltır ve pager'ı başlangıç durumuna döndürür.
// Süren bir istek varsa yanıtı generation kontrolüyle atılır.
func (p *Pager[T]) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	p.items = nil
	p.seen = make(map[string]bool)
	p.offset = 0
	p.hasMore = true
	p.started = false
	p.inFlight = false
}

// Upsert, listedeki bir item'ı ID eşleşmesiyle yerinde günceller.
// Live event'lerin (örn. tell cevaplanması) biriken listeye
// geri yazılması için kullanılır. Item listede yoksa hiçbir şey yapmaz
// ve false döner.
func (p *Pager[T]) Upsert(item T) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := item.ItemID()
	for i := range p.items {
		if p.items[i].ItemID() == id {
			p.items[i] = item
			return true
		}
	}
	return false
}

// Prepend, listeye baştan item ekler (live event ile gelen yeni item).
// ID zaten listedeyse no-op'tur — dedupe invariant'ı korunur.
func (p *Pager[T]) Prepend(item T) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := item.ItemID()
	if p.seen[id] {
		return false
	}
	p.seen[id] = true
	p.items = append([]T{item}, p.items...)
	return true
}
