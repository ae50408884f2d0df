package orderControllers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/raseen-shahil/Med-App-sub000/middleware"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Notifier is told about every order that commits.
type Notifier interface {
	NotifyNewOrder(order models.Order)
}

type wsClient struct {
	sellerID string
	conn     *websocket.Conn
	send     chan []byte
}

// Hub fans newly placed orders out to the dashboards of the sellers whose
// medicines are in them.
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*wsClient]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*wsClient]struct{})}
}

type orderMessage struct {
	Type  string       `json:"type"`
	Order models.Order `json:"order"`
}

// OrderWebSocketHandler upgrades GET /seller/ws/orders for the authenticated seller.
func (h *Hub) OrderWebSocketHandler(c *gin.Context) {
	sellerID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	cl := &wsClient{sellerID: sellerID, conn: conn, send: make(chan []byte, sendBuffer)}
	if !h.register(cl) {
		conn.Close()
		return
	}
	log.Info().Str("seller_id", sellerID).Msg("🔌 seller dashboard connected")

	go cl.writePump()
	cl.readPump()

	h.unregister(cl)
	log.Info().Str("seller_id", sellerID).Msg("seller dashboard disconnected")
}

func (h *Hub) register(cl *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[cl.sellerID]
	if !ok {
		set = make(map[*wsClient]struct{})
		h.clients[cl.sellerID] = set
	}
	set[cl] = struct{}{}
	return true
}

func (h *Hub) unregister(cl *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(cl)
}

func (h *Hub) removeLocked(cl *wsClient) {
	set, ok := h.clients[cl.sellerID]
	if !ok {
		return
	}
	if _, ok := set[cl]; !ok {
		return
	}
	delete(set, cl)
	if len(set) == 0 {
		delete(h.clients, cl.sellerID)
	}
	close(cl.send)
}

// NotifyNewOrder sends each involved seller the order restricted to their own items.
// A client whose buffer is full is dropped.
func (h *Hub) NotifyNewOrder(order models.Order) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sellerID := range order.SellerIDs() {
		set := h.clients[sellerID]
		if len(set) == 0 {
			continue
		}
		view := order
		view.Items = nil
		for _, it := range order.Items {
			if it.SellerID == sellerID {
				view.Items = append(view.Items, it)
			}
		}
		data, err := json.Marshal(orderMessage{Type: "order.placed", Order: view})
		if err != nil {
			log.Error().Err(err).Str("order_id", order.OrderID).Msg("marshal websocket order")
			continue
		}
		for cl := range set {
			select {
			case cl.send <- data:
			default:
				log.Warn().Str("seller_id", sellerID).Msg("dropping slow dashboard connection")
				h.removeLocked(cl)
			}
		}
	}
}

// Connections returns how many dashboards are connected for sellerID.
func (h *Hub) Connections(sellerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[sellerID])
}

// Close disconnects every dashboard and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, set := range h.clients {
		for cl := range set {
			h.removeLocked(cl)
		}
	}
}

// readPump only watches for disconnects and pongs; dashboards never send data.
func (cl *wsClient) readPump() {
	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (cl *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()
	for {
		select {
		case data, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
