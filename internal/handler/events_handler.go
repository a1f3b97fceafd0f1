package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// StreamEvents 以 SSE 推送当前用户的数据变更事件
// 客户端断开时释放订阅；定期发心跳防止代理断流
func (a *API) StreamEvents(c *gin.Context) {
	userID, _ := currentUserID(c)

	sub := a.hub.Subscribe(userID)
	defer sub.Close()

	keepalive := time.NewTicker(25 * time.Second)
	defer keepalive.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("change", ev)
			return true
		case <-keepalive.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-ctx.Done():
			return false
		}
	})
}
