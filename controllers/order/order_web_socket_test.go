package orderControllers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/raseen-shahil/Med-App-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/seller/ws/orders", func(c *gin.Context) {
		c.Set("user_id", c.Query("seller"))
		c.Next()
	}, hub.OrderWebSocketHandler)
	return hub, httptest.NewServer(r)
}

func dial(t *testing.T, srv *httptest.Server, seller string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/seller/ws/orders?seller=" + seller
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
}

func TestHubDeliversOnlyToInvolvedSellers(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub, srv := startHub(t)
	a := dial(t, srv, "seller-a")
	c := dial(t, srv, "seller-c")
	waitFor(t, func() bool { return hub.Connections("seller-a") == 1 && hub.Connections("seller-c") == 1 })

	hub.NotifyNewOrder(models.Order{
		OrderID: "ORD1",
		Items: []models.OrderItem{
			{SellerID: "seller-a", Name: "Paracetamol", Quantity: 2},
			{SellerID: "seller-b", Name: "Amoxicillin", Quantity: 1},
		},
	})

	require.NoError(t, a.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := a.ReadMessage()
	require.NoError(t, err)
	var msg struct {
		Type  string       `json:"type"`
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "order.placed", msg.Type)
	assert.Equal(t, "ORD1", msg.Order.OrderID)
	require.Len(t, msg.Order.Items, 1)
	assert.Equal(t, "Paracetamol", msg.Order.Items[0].Name)

	require.NoError(t, c.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = c.ReadMessage()
	assert.Error(t, err)

	a.Close()
	c.Close()
	waitFor(t, func() bool { return hub.Connections("seller-a") == 0 && hub.Connections("seller-c") == 0 })
	hub.Close()
	srv.Close()
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub, srv := startHub(t)
	a := dial(t, srv, "seller-a")
	waitFor(t, func() bool { return hub.Connections("seller-a") == 1 })

	hub.Close()
	require.NoError(t, a.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := a.ReadMessage()
	assert.Error(t, err)
	a.Close()

	late, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/seller/ws/orders?seller=seller-a", nil)
	if err == nil {
		_ = late.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, rerr := late.ReadMessage()
		assert.Error(t, rerr)
		late.Close()
	}
	assert.Equal(t, 0, hub.Connections("seller-a"))
	srv.Close()
}
