package ws

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ihsandara/PemBlle/pkg"
)

const (
	// writeWait: Bir control frame'i yazmak için maksimum bekleme süresi.
	writeWait = 10 * time.Second

	// pongWait: Sunucudan herhangi bir frame gelmesi için beklenen maksimum süre.
	// Bu süre dolarsa bağlantı ölü kabul edilir ve read loop hata ile çıkar.
	pongWait = 90 * time.Second

	// pingPeriod: Ping gönderme aralığı. pongWait'ten küçük olmalıdır —
	// aksi halde sunucu cevap veremeden deadline dolar.
	pingPeriod = 30 * time.Second

	// initialBackoff: Reconnect açıksa ilk yeniden deneme beklemesi.
	// Her başarısız denemede ikiye katlanır, MaxBackoff'ta sabitlenir.
	initialBackoff = time.Second
)

// State, kanalın bağlantı durumu.
//
// Geçişler tek yönlü bir döngüdür:
// Disconnected → Connecting → Connected → Disconnected
// Connected'dan doğrudan Connecting'e geçiş yoktur — kopuş her zaman
// önce Disconnected'a düşer (reconnect açıksa oradan tekrar Connecting'e).
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String, loglarda okunabilir durum adı.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Options, kanal davranış ayarları.
type Options struct {
	// Reconnect: Kopuşta otomatik yeniden bağlanma. Varsayılan kapalı —
	// kapalıyken kopuş sadece state'i Disconnected yapar, yeniden bağlanma
	// çağıranın (ör. ekran geçişi) sorumluluğundadır.
	Reconnect  bool
	MaxBackoff time.Duration
}

// Channel, sunucunun gerçek zamanlı event kanalına tek bir bağlantıyı yönetir.
//
// Connect bloklamaz: bağlantı kurulduktan sonra read loop arka planda çalışır
// ve gelen her event Dispatcher'a iletilir. Close çağrılana (veya bağlantı
// kopana) kadar yaşar.
type Channel struct {
	url        string
	dispatcher *Dispatcher
	opts       Options
	dialer     *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	state  State
	cancel context.CancelFunc
}

// NewChannel, constructor.
// url "/ws"e kadar olan kök adrestir — kullanıcı ID'si Connect'te eklenir.
func NewChannel(url string, dispatcher *Dispatcher, opts Options) *Channel {
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = time.Minute
	}
	return &Channel{
		url:        url,
		dispatcher: dispatcher,
		opts:       opts,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// State, anlık bağlantı durumu.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect, verilen kullanıcı için kanalı açar.
//
// Zaten bağlıysa no-op'tur. Başarılı dönüşte read loop ve ping loop
// arka planda çalışıyordur. Handshake hatası ErrNetwork'e wrap edilir.
func (c *Channel) Connect(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", pkg.ErrValidation)
	}

	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	conn, err := c.dial(ctx, userID)
	if err != nil {
		c.setState(StateDisconnected)
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.conn = conn
	c.state = StateConnected
	c.cancel = cancel
	c.mu.Unlock()

	log.Printf("[ws] connected for user %s", userID)

	go c.run(runCtx, conn, userID)
	return nil
}

// Close, kanalı kapatır. Reconnect döngüsü de durdurulur.
// Kapalı kanalda no-op'tur.
func (c *Channel) Close() error {
	c.mu.Lock()
	conn := c.conn
	cancel := c.cancel
	c.conn = nil
	c.cancel = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		// Karşı tarafa nazik kapanış bildir, sonra bağlantıyı bırak
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		return conn.Close()
	}
	return nil
}

func (c *Channel) dial(ctx context.Context, userID string) (*websocket.Conn, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url+"/"+userID, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: websocket dial: %v", pkg.ErrNetwork, err)
	}
	return conn, nil
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// run, bağlantının yaşam döngüsü: ping loop başlatır, read loop çalıştırır,
// kopuşta (reconnect açıksa) backoff ile yeniden bağlanır.
func (c *Channel) run(ctx context.Context, conn *websocket.Conn, userID string) {
	for {
		c.readLoop(ctx, conn)

		// Bu noktada bağlantı kopmuş veya Close çağrılmıştır
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
			c.state = StateDisconnected
		}
		c.mu.Unlock()

		if ctx.Err() != nil || !c.opts.Reconnect {
			return
		}

		next, ok := c.redial(ctx, userID)
		if !ok {
			return
		}
		conn = next
	}
}

// readLoop, frame'leri okur ve Dispatcher'a iletir. Bağlantı kopana
// veya ctx iptal edilene kadar döner.
func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Ping loop bu bağlantıya özel — readLoop dönünce kapanır
	pingDone := make(chan struct{})
	defer close(pingDone)
	go c.pingLoop(conn, pingDone)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("[ws] read error: %v", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		ev, err := ParseEvent(frame)
		if err != nil {
			// Bozuk frame bağlantıyı düşürmez — logla ve devam et
			log.Printf("[ws] dropping malformed frame: %v", err)
			continue
		}
		c.dispatcher.Dispatch(ev)
	}
}

// pingLoop, bağlantıyı canlı tutmak için periyodik ping gönderir.
func (c *Channel) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				// Yazma hatası read loop'u da düşürecektir — burada sadece çık
				return
			}
		}
	}
}

// redial, backoff ile yeniden bağlanmayı dener.
// ctx iptal edilirse (false) döner — reconnect döngüsü biter.
func (c *Channel) redial(ctx context.Context, userID string) (*websocket.Conn, bool) {
	backoff := initialBackoff

	for {
		c.setState(StateConnecting)
		log.Printf("[ws] reconnecting in %s", backoff)

		select {
		case <-ctx.Done():
			c.setState(StateDisconnected)
			return nil, false
		case <-time.After(backoff):
		}

		conn, err := c.dial(ctx, userID)
		if err == nil {
			c.mu.Lock()
			c.conn = conn
			c.state = StateConnected
			c.mu.Unlock()
			log.Printf("[ws] reconnected for user %s", userID)
			return conn, true
		}

		log.Printf("[ws] reconnect failed: %v", err)
		backoff *= 2
		if backoff > c.opts.MaxBackoff {
			backoff = c.opts.MaxBackoff
		}
	}
}
