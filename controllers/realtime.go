package controllers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"djagency-backend/logger"
	"djagency-backend/utils"
)

// RealtimeTables are the tables whose writes are broadcast
var RealtimeTables = []string{"djs", "events", "contracts", "payments", "dj_media"}

var heartbeatInterval = 25 * time.Second

func parseTables(raw string) ([]string, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}
	known := map[string]bool{}
	for _, t := range RealtimeTables {
		known[t] = true
	}
	var tables []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !known[t] {
			return nil, false
		}
		tables = append(tables, t)
	}
	return tables, true
}

// StreamChanges pushes row changes as Server-Sent Events until the client leaves
func StreamChanges(c *gin.Context) {
	tables, ok := parseTables(c.Query("tables"))
	if !ok {
		utils.RespondWithError(c, http.StatusBadRequest, "Tabela desconhecida em tables")
		return
	}

	sub := deps.Hub.Subscribe(tables...)
	defer deps.Hub.Unsubscribe(sub)

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	logger.L().Debug("realtime client connected", zap.Strings("tables", tables))
	if len(tables) == 0 {
		tables = RealtimeTables
	}
	c.SSEvent("ready", gin.H{"tables": tables})
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case change, open := <-sub.C:
			if !open {
				return false
			}
			c.SSEvent("change", change)
			return true
		case t := <-ticker.C:
			c.SSEvent("ping", t.Unix())
			return true
		}
	})
	logger.L().Debug("realtime client disconnected")
}
