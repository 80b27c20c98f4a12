package services

import (
	"sync"
	"time"

	"clinicore/internal/models"
	"clinicore/pkg/logger"

	"github.com/gorilla/websocket"
)

// 事件类型常量
const (
	EventLowStock           = "inventory.low_stock"
	EventAppointmentCreated = "appointment.created"
)

// Event 推送给前端的事件
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Time time.Time   `json:"time"`
}

// Notifier 按诊所分组的WebSocket事件推送器
// 推送失败的连接直接移除，由客户端重连
type Notifier struct {
	mu      sync.Mutex
	clients map[uint]map[*websocket.Conn]bool // clinicID -> 连接集合
}

// NewNotifier 创建事件推送器
func NewNotifier() *Notifier {
	return &Notifier{
		clients: make(map[uint]map[*websocket.Conn]bool),
	}
}

// Register 注册诊所的一个连接
func (n *Notifier) Register(clinicID uint, conn *websocket.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.clients[clinicID] == nil {
		n.clients[clinicID] = make(map[*websocket.Conn]bool)
	}
	n.clients[clinicID][conn] = true
}

// Unregister 移除连接
func (n *Notifier) Unregister(clinicID uint, conn *websocket.Conn) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if conns, ok := n.clients[clinicID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(n.clients, clinicID)
		}
	}
}

// ClientCount 诊所当前连接数
func (n *Notifier) ClientCount(clinicID uint) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.clients[clinicID])
}

func (n *Notifier) broadcast(clinicID uint, event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for conn := range n.clients[clinicID] {
		if err := conn.WriteJSON(event); err != nil {
			logger.GetLogger().Warnf("推送事件失败，移除连接: %v", err)
			conn.Close()
			delete(n.clients[clinicID], conn)
		}
	}
}

// NotifyLowStock 推送低库存事件
func (n *Notifier) NotifyLowStock(item *models.InventoryItem) {
	n.broadcast(item.ClinicID, Event{
		Type: EventLowStock,
		Data: item,
		Time: time.Now(),
	})
}

// NotifyAppointmentCreated 推送新预约事件
func (n *Notifier) NotifyAppointmentCreated(appointment *models.Appointment) {
	n.broadcast(appointment.ClinicID, Event{
		Type: EventAppointmentCreated,
		Data: appointment,
		Time: time.Now(),
	})
}
