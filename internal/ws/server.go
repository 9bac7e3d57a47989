package ws

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/brosora6/sora-sub000/internal/auth"
	"github.com/brosora6/sora-sub000/internal/config"
	"github.com/brosora6/sora-sub000/internal/middleware"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config

	paymentRealtime *paymentRealtime
}

func New(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config) *Server {
	srv := &Server{DB: db, Logger: logger, Config: cfg}
	srv.paymentRealtime = newPaymentRealtime(db, logger)
	return srv
}

type wsRealtimeClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsRealtimeClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

// PaymentState is the snapshot pushed to subscribed clients.
type PaymentState struct {
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status"`
	TotalAmount int64     `json:"totalAmount"`
	Note        *string   `json:"note"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type paymentRealtime struct {
	db     *pgxpool.Pool
	logger *zap.Logger

	started sync.Once
	mu      sync.RWMutex
	subs    map[string]map[*wsRealtimeClient]struct{}
}

func newPaymentRealtime(db *pgxpool.Pool, logger *zap.Logger) *paymentRealtime {
	return &paymentRealtime{
		db:     db,
		logger: logger,
		subs:   make(map[string]map[*wsRealtimeClient]struct{}),
	}
}

func (pr *paymentRealtime) ensureStarted() {
	pr.started.Do(func() {
		go pr.listenLoop(context.Background())
	})
}

func (pr *paymentRealtime) subscribe(orderNumber string, client *wsRealtimeClient) (unsubscribe func()) {
	key := strings.TrimSpace(orderNumber)
	if key == "" {
		return func() {}
	}

	pr.mu.Lock()
	if pr.subs[key] == nil {
		pr.subs[key] = make(map[*wsRealtimeClient]struct{})
	}
	pr.subs[key][client] = struct{}{}
	pr.mu.Unlock()

	return func() {
		pr.mu.Lock()
		clients := pr.subs[key]
		delete(clients, client)
		if len(clients) == 0 {
			delete(pr.subs, key)
		}
		pr.mu.Unlock()
	}
}

func (pr *paymentRealtime) broadcast(orderNumber string, message any) {
	key := strings.TrimSpace(orderNumber)
	if key == "" {
		return
	}

	pr.mu.RLock()
	clientsMap := pr.subs[key]
	clients := make([]*wsRealtimeClient, 0, len(clientsMap))
	for c := range clientsMap {
		clients = append(clients, c)
	}
	pr.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			_ = c.conn.Close()
			pr.mu.Lock()
			if current := pr.subs[key]; current != nil {
				delete(current, c)
				if len(current) == 0 {
					delete(pr.subs, key)
				}
			}
			pr.mu.Unlock()
		}
	}
}

func (pr *paymentRealtime) fetchPaymentState(ctx context.Context, orderNumber string) (PaymentState, bool, error) {
	query := `
		select order_number, status, total_amount, note, updated_at
		from payments
		where order_number = $1
	`

	var state PaymentState
	var note pgtype.Text
	if err := pr.db.QueryRow(ctx, query, orderNumber).Scan(
		&state.OrderNumber,
		&state.Status,
		&state.TotalAmount,
		&note,
		&state.UpdatedAt,
	); err != nil {
		return PaymentState{}, false, err
	}
	if note.Valid {
		state.Note = &note.String
	}
	return state, true, nil
}

func (pr *paymentRealtime) listenLoop(ctx context.Context) {
	backoff := time.Second
	for {
		conn, err := pr.db.Acquire(ctx)
		if err != nil {
			if pr.logger != nil {
				pr.logger.Warn("payment LISTEN acquire failed", zap.Error(err))
			}
			time.Sleep(backoff)
			backoff = minDuration(backoff*2, 30*time.Second)
			continue
		}

		_, err = conn.Exec(ctx, `listen payment_updates`)
		if err != nil {
			conn.Release()
			if pr.logger != nil {
				pr.logger.Warn("payment LISTEN failed", zap.Error(err))
			}
			time.Sleep(backoff)
			backoff = minDuration(backoff*2, 30*time.Second)
			continue
		}

		backoff = time.Second
		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				break
			}
			orderNumber := strings.TrimSpace(n.Payload)
			if orderNumber == "" {
				continue
			}

			state, found, fetchErr := pr.fetchPaymentState(ctx, orderNumber)
			if fetchErr != nil || !found {
				pr.broadcast(orderNumber, map[string]any{"type": "payment.refresh", "updatedAt": time.Now()})
				continue
			}

			pr.broadcast(orderNumber, map[string]any{"type": "payment.state", "data": state})
		}

		conn.Release()
		time.Sleep(backoff)
		backoff = minDuration(backoff*2, 30*time.Second)
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// PaymentWS streams payment status changes for one of the caller's orders.
// Auth comes from the customer session cookie or a ?token= query parameter.
func (s *Server) PaymentWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	orderNumber := strings.TrimSpace(r.URL.Query().Get("orderNumber"))
	if orderNumber == "" {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "invalid request"})
		return
	}

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		if cookie, cookieErr := r.Cookie(middleware.CustomerCookie); cookieErr == nil {
			token = cookie.Value
		}
	}
	claims, err := auth.VerifyAccessToken(token, s.Config.JWTSecret)
	if err != nil || claims.Role != auth.RoleCustomer {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "unauthorized"})
		return
	}

	ctx := r.Context()
	if !s.paymentBelongsToCustomer(ctx, orderNumber, claims.ActorID) {
		_ = conn.WriteJSON(map[string]any{"type": "error", "message": "payment not found"})
		return
	}

	s.paymentRealtime.ensureStarted()
	client := &wsRealtimeClient{conn: conn}
	unsubscribe := s.paymentRealtime.subscribe(orderNumber, client)
	defer unsubscribe()

	// Send the initial snapshot immediately.
	if state, found, fetchErr := s.paymentRealtime.fetchPaymentState(ctx, orderNumber); fetchErr == nil && found {
		_ = client.writeJSON(map[string]any{"type": "payment.state", "data": state})
	} else {
		_ = client.writeJSON(map[string]any{"type": "payment.refresh", "updatedAt": time.Now()})
	}

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	select {
	case <-clientClosed:
		return
	case <-ctx.Done():
		return
	}
}

func (s *Server) paymentBelongsToCustomer(ctx context.Context, orderNumber string, customerID int64) bool {
	var id int64
	query := `select id from payments where order_number = $1 and customer_id = $2`
	if err := s.DB.QueryRow(ctx, query, orderNumber, customerID).Scan(&id); err != nil {
		return false
	}
	return true
}
