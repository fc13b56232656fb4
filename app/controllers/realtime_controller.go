package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/pkg/ctx"
	"github.com/agriconnect-ug/agriconnect/pkg/metrics"
	"github.com/agriconnect-ug/agriconnect/pkg/realtime"
	"github.com/agriconnect-ug/agriconnect/pkg/sse"
)

// sseHeartbeat keeps proxies from timing out an idle SSE stream.
const sseHeartbeat = 25 * time.Second

// RealtimeController exposes the change feed over WebSocket and SSE.
// Clients scope their subscription to a table, and optionally one row id
// or one category.
type RealtimeController struct {
	hub *realtime.Hub
}

func NewRealtimeController(hub *realtime.Hub) *RealtimeController {
	return &RealtimeController{hub: hub}
}

func feedFilter(c *ctx.Context) realtime.Filter {
	f := realtime.Filter{Table: c.DefaultQuery("table", services.ListingsTable)}

	if raw := c.Query("id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			f.ID = uint(id)
		}
	}
	if category := c.Query("category"); category != "" {
		f.Column = "category"
		f.Value = strings.ToLower(category)
	}
	return f
}

// WS upgrades to a WebSocket and streams matching change events as JSON
// text frames until the client goes away.
func (rc *RealtimeController) WS(c *ctx.Context) {
	realtime.ServeWS(rc.hub, feedFilter(c), c.W, c.R)
}

// SSE streams the same feed as server-sent events, with comment
// heartbeats while the feed is quiet.
func (rc *RealtimeController) SSE(c *ctx.Context) {
	stream := sse.New(c.W, c.R)
	if stream == nil {
		return
	}

	sub := rc.hub.Subscribe(feedFilter(c))
	defer sub.Close()

	metrics.RealtimeClients.WithLabelValues("sse").Inc()
	defer metrics.RealtimeClients.WithLabelValues("sse").Dec()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-stream.Done():
			return
		case <-heartbeat.C:
			stream.Comment("keepalive")
		case change, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := stream.Send("change", change); err != nil {
				return
			}
			if stream.IsClosed() {
				return
			}
		}
	}
}
