// Package websocket 提供交易状态变更的 WebSocket 推送
//
// 客户端连接 /api/v1/ws（可选 ?id=<txId> 只订阅单笔记录），服务端把
// 账本发布的 tx:status-update 事件逐条以 JSON 文本帧推送。连接只读，
// 客户端发来的消息被忽略。
package websocket

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/weisyn/txledger/internal/core/txledger"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/txledger/pkg/types"
)

const (
	// sendBufferSize 每个连接的待发送队列长度，队列满时丢弃新消息
	sendBufferSize = 64
	writeWait      = 10 * time.Second
)

// Message 推送给客户端的消息
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Server WebSocket服务器
type Server struct {
	logger   log.Logger
	bus      event.EventBus
	upgrader websocket.Upgrader
}

// NewServer 创建WebSocket服务器
func NewServer(logger log.Logger, bus event.EventBus) *Server {
	return &Server{
		logger: logger,
		bus:    bus,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket 处理WebSocket连接（Gin Handler）
func (s *Server) HandleWebSocket(c *gin.Context) {
	filterID := c.Query("id")
	send := make(chan Message, sendBufferSize)
	done := make(chan struct{})

	// 先订阅再升级，升级完成后不会错过任何事件
	subID, err := s.bus.Subscribe(txledger.TopicStatusUpdate, func(_ event.EventType, data interface{}) {
		update, ok := data.(types.TxStatusUpdate)
		if !ok || (filterID != "" && update.ID != filterID) {
			return
		}
		select {
		case <-done:
		case send <- Message{Type: string(txledger.TopicStatusUpdate), Data: update}:
		default:
			s.logger.Warnf("WebSocket发送队列已满，丢弃事件: id=%s status=%s", update.ID, update.Status)
		}
	})
	if err != nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	defer func() {
		if err := s.bus.UnsubscribeByID(subID); err != nil {
			s.logger.Warnf("取消WebSocket订阅失败: %v", err)
		}
	}()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warnf("升级WebSocket连接失败: %v", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Debugf("关闭WebSocket连接失败: %v", err)
		}
	}()

	s.logger.Infof("WebSocket连接已建立: remote=%s filter=%q", conn.RemoteAddr(), filterID)

	// 读循环只用于感知关闭
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Warnf("WebSocket连接异常关闭: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			s.logger.Infof("WebSocket连接已关闭: remote=%s", conn.RemoteAddr())
			return
		case msg := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Warnf("WebSocket写入失败: %v", err)
				return
			}
		}
	}
}
