package service

import (
	"net/http"

	"PowerOyoApi/internal/middleware"
	"PowerOyoApi/pkg/logger"
	"PowerOyoApi/pkg/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var notificationUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NotificationWebsocketService relays the account's redis notification
// channel to its connected browser session.
type NotificationWebsocketService struct {
	publisher *notify.RedisPublisher
}

func NewNotificationWebsocketService(publisher *notify.RedisPublisher) *NotificationWebsocketService {
	return &NotificationWebsocketService{publisher: publisher}
}

func (n *NotificationWebsocketService) WebsocketHandler(c *gin.Context) {
	accountID, err := middleware.GetUserIDFromGinContext(c)
	if err != nil {
		logger.Error("%v", err)
		c.Status(500)
		return
	}

	conn, err := notificationUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("%v", err)
		return
	}
	defer conn.Close()

	sub := n.publisher.Subscribe(c.Request.Context(), accountID)
	defer sub.Close()

	// drain reads so close frames from the browser are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Close()
				return
			}
		}
	}()

	for msg := range sub.Channel() {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
			return
		}
	}
}
