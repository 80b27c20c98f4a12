package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinicore/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestConn 起一个内存websocket服务端，返回服务端侧连接和客户端侧连接
func dialTestConn(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	serverConns := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	server := <-serverConns
	t.Cleanup(func() { server.Close() })

	return server, client
}

func TestNotifierRegisterUnregister(t *testing.T) {
	n := NewNotifier()
	server, _ := dialTestConn(t)

	n.Register(7, server)
	assert.Equal(t, 1, n.ClientCount(7))
	assert.Equal(t, 0, n.ClientCount(8))

	n.Unregister(7, server)
	assert.Equal(t, 0, n.ClientCount(7))
}

func TestNotifierLowStockDelivery(t *testing.T) {
	n := NewNotifier()
	server, client := dialTestConn(t)
	n.Register(7, server)

	n.NotifyLowStock(&models.InventoryItem{
		ClinicID: 7,
		Name:     "纱布",
		Quantity: 2,
	})

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	require.NoError(t, client.ReadJSON(&event))
	assert.Equal(t, EventLowStock, event.Type)
}

func TestNotifierScopedToClinic(t *testing.T) {
	n := NewNotifier()
	server, client := dialTestConn(t)
	n.Register(7, server)

	// 其他诊所的事件不应推给本诊所连接
	n.NotifyAppointmentCreated(&models.Appointment{ClinicID: 8})

	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var event Event
	err := client.ReadJSON(&event)
	assert.Error(t, err)
}

func TestNotifierNoClientsNoPanic(t *testing.T) {
	n := NewNotifier()
	assert.NotPanics(t, func() {
		n.NotifyLowStock(&models.InventoryItem{ClinicID: 1, Name: "口罩"})
	})
}
