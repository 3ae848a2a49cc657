package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/finease/finease-backend/internal/metrics"
	"github.com/finease/finease-backend/internal/store"
)

// MessageStore is the slice of the persistence layer the chat endpoints
// need.
type MessageStore interface {
	InsertMessage(ctx context.Context, m store.Message) (store.Message, error)
	History(ctx context.Context, userID string) ([]store.Message, error)
	DeleteHistory(ctx context.Context, userID string) (int64, error)
}

// Responder computes the bot reply for a user message. Its logic is owned
// elsewhere; the handler only persists what it returns.
type Responder func(ctx context.Context, message string) (string, error)

type ChatHandler struct {
	Store   MessageStore
	Respond Responder

	logger *log.Logger
}

func (h *ChatHandler) Register(g *echo.Group) {
	h.logger = log.New(log.Writer(), "[CHAT] ", log.LstdFlags)
	g.POST("/send", h.send)
	g.GET("/history/:user_id", h.history)
	g.DELETE("/history/:user_id", h.deleteHistory)
}

type sendRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
	Sender  string `json:"sender"`
}

// send persists the user's message with a fresh server-side UTC timestamp,
// computes the bot reply, persists it and returns the stored bot message.
func (h *ChatHandler) send(c echo.Context) error {
	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sender := store.Sender(req.Sender)
	if sender == "" {
		sender = store.SenderUser
	}

	userMsg, err := store.NewMessage(req.UserID, req.Message, sender)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if _, err := h.Store.InsertMessage(ctx, userMsg); err != nil {
		h.logger.Printf("persisting user message for %s: %v", userMsg.UserID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	metrics.MessagesStored.Inc()

	replyText, err := h.Respond(ctx, req.Message)
	if err != nil {
		h.logger.Printf("computing reply for %s: %v", userMsg.UserID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	botMsg, err := store.NewMessage(req.UserID, replyText, store.SenderBot)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	saved, err := h.Store.InsertMessage(ctx, botMsg)
	if err != nil {
		h.logger.Printf("persisting bot message for %s: %v", userMsg.UserID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	metrics.MessagesStored.Inc()

	return c.JSON(http.StatusCreated, saved)
}

func (h *ChatHandler) history(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("user_id"))
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "User ID cannot be empty.")
	}

	msgs, err := h.Store.History(c.Request().Context(), userID)
	if err != nil {
		h.logger.Printf("retrieving history for %s: %v", userID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, msgs)
}

func (h *ChatHandler) deleteHistory(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("user_id"))
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "User ID cannot be empty.")
	}

	count, err := h.Store.DeleteHistory(c.Request().Context(), userID)
	if err != nil {
		h.logger.Printf("deleting history for %s: %v", userID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	msg := fmt.Sprintf("No messages found to delete for user '%s'.", userID)
	if count > 0 {
		msg = fmt.Sprintf("Successfully deleted %d messages for user '%s'.", count, userID)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":       msg,
		"deleted_count": count,
	})
}
