package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/finease/finease-backend/engine"
	"github.com/finease/finease-backend/rag/session"
)

// Comparator is the slice of the engine the RAG endpoints need.
type Comparator interface {
	CreateSession(ctx context.Context, urlA, urlB string) (string, error)
	Compare(ctx context.Context, sessionID, question, language string) (string, error)
	Search(ctx context.Context, sessionID, query string, k int, mode string) (engine.SearchResults, error)
}

type RAGHandler struct {
	Service Comparator
}

func (h *RAGHandler) Register(g *echo.Group) {
	g.POST("/process-urls", h.processURLs)
	g.POST("/document-chat", h.documentChat)
	g.POST("/document-search", h.documentSearch)
}

type processURLsRequest struct {
	URLs []string `json:"urls"`
}

func (h *RAGHandler) processURLs(c echo.Context) error {
	var req processURLsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.URLs) != 2 {
		return echo.NewHTTPError(http.StatusBadRequest, "Please provide exactly two URLs.")
	}
	for _, u := range req.URLs {
		if strings.TrimSpace(u) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "Please provide exactly two URLs.")
		}
	}

	sessionID, err := h.Service.CreateSession(c.Request().Context(), req.URLs[0], req.URLs[1])
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to process one or more URLs: "+err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"session_id": sessionID})
}

type documentChatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	Language  string `json:"language"` // 'en' or 'kn'
}

func (h *RAGHandler) documentChat(c echo.Context) error {
	var req documentChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Question) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id and question are required")
	}
	if req.Language == "" {
		req.Language = "en"
	}

	answer, err := h.Service.Compare(c.Request().Context(), req.SessionID, req.Question, req.Language)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Invalid session ID.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}

type documentSearchRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	K         int    `json:"k"`
	Mode      string `json:"mode"` // vector (default) | hybrid
}

func (h *RAGHandler) documentSearch(c echo.Context) error {
	var req documentSearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id and query are required")
	}

	hits, err := h.Service.Search(c.Request().Context(), req.SessionID, req.Query, req.K, req.Mode)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Invalid session ID.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, hits)
}
