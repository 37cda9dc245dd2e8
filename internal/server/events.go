package server

import (
	"io"

	"github.com/gin-gonic/gin"
)

// handleEvents streams task events as server-sent events until the client
// disconnects or the bus closes.
func (s *Server) handleEvents(c *gin.Context) {
	sub := s.events.Subscribe()
	defer s.events.Unsubscribe(sub)

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.Ch():
			if !ok {
				return false
			}
			c.SSEvent("task", ev)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
