package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hupe1980/tubeanalyst/analyst"
	"github.com/hupe1980/tubeanalyst/core"
	"github.com/hupe1980/tubeanalyst/session"
)

type chatRequest struct {
	SessionID   string `json:"session_id"`
	Question    string `json:"question" binding:"required"`
	SourceRef   string `json:"source_ref"`
	DataSummary string `json:"data_summary"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	if req.SessionID == "" {
		req.SessionID = core.NewID()
	}

	ans, err := s.asker.Ask(c.Request.Context(), analyst.Question{
		SessionID:   req.SessionID,
		Text:        req.Question,
		SourceRef:   req.SourceRef,
		DataSummary: req.DataSummary,
	})
	switch {
	case errors.Is(err, analyst.ErrEmptyQuestion):
		abortWithError(c, http.StatusBadRequest, err)
		return
	case errors.Is(err, context.DeadlineExceeded):
		abortWithError(c, http.StatusGatewayTimeout, err)
		return
	case err != nil:
		s.logger.Error("Chat request failed", "session_id", req.SessionID, "error", err.Error())
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, ans)
}

func (s *Server) listSessions(c *gin.Context) {
	all := s.store.GetAllSessions()
	c.JSON(http.StatusOK, gin.H{"sessions": all, "count": len(all)})
}

var errSessionNotFound = errors.New("session not found")

func (s *Server) getSession(c *gin.Context) {
	info, ok := s.store.GetSessionInfo(c.Param("id"))
	if !ok {
		abortWithError(c, http.StatusNotFound, errSessionNotFound)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) sessionContext(c *gin.Context) {
	id := c.Param("id")
	n, err := intQuery(c, "max_messages", session.DefaultContextMessages)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	if _, ok := s.store.GetSessionInfo(id); !ok {
		abortWithError(c, http.StatusNotFound, errSessionNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":   id,
		"max_messages": n,
		"context":      s.store.GetSessionContext(id, n),
	})
}

func (s *Server) sessionMessages(c *gin.Context) {
	id := c.Param("id")
	n, err := intQuery(c, "limit", session.DefaultContextMessages)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	if _, ok := s.store.GetSessionInfo(id); !ok {
		abortWithError(c, http.StatusNotFound, errSessionNotFound)
		return
	}
	msgs := s.store.RecentMessages(id, n)
	if msgs == nil {
		msgs = []core.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"session_id": id, "messages": msgs})
}

func (s *Server) deleteSession(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, gin.H{"session_id": id, "removed": s.store.RemoveSession(id)})
}

type statsResponse struct {
	core.Stats
	SessionTimeout  string `json:"session_timeout"`
	CleanupInterval string `json:"cleanup_interval"`
}

func (s *Server) stats(c *gin.Context) {
	st := s.store.GetStats()
	c.JSON(http.StatusOK, statsResponse{
		Stats:           st,
		SessionTimeout:  st.SessionTimeout.String(),
		CleanupInterval: st.CleanupInterval.String(),
	})
}

func (s *Server) cleanup(c *gin.Context) {
	removed := s.store.CleanupExpiredSessions()
	c.JSON(http.StatusOK, gin.H{"removed": removed, "remaining": s.store.GetStats().ActiveSessions})
}

func (s *Server) clear(c *gin.Context) {
	removed := s.store.ClearAllSessions()
	s.logger.Warn("All sessions cleared via maintenance endpoint", "removed", removed)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Server) health(c *gin.Context) {
	resp := gin.H{
		"status":          "healthy",
		"timestamp":       s.opts.Now().UTC(),
		"active_sessions": s.store.GetStats().ActiveSessions,
	}
	if vm, err := s.opts.MemoryStats(); err != nil {
		resp["memory_error"] = err.Error()
	} else {
		resp["memory"] = gin.H{
			"total":        vm.Total,
			"used":         vm.Used,
			"available":    vm.Available,
			"used_percent": vm.UsedPercent,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}
