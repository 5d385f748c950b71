package handlers

import (
	"io"
	"net/http"

	"thermostat_hub/internal/pubsub"

	"github.com/gin-gonic/gin"
)

const maxPushBody = 1 << 20

// @Summary      Pub/Sub push delivery
// @Description  Accepts a push envelope and merges the carried change event. Any authenticated delivery answers 204 so the message is never redelivered.
// @Tags         events
// @Accept       json
// @Param        token  query  string  true  "push subscription token"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /pubsub/push [post]
func (h *Handler) pubsubPush(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPushBody))
	if err != nil {
		if h.log != nil {
			h.log.Warnw("pubsub_push_read_failed", "err", err)
		}
		c.Status(http.StatusNoContent)
		return
	}
	payload, env, err := pubsub.DecodePush(body)
	if err != nil {
		if h.log != nil {
			h.log.Warnw("pubsub_push_invalid", "err", err)
		}
		c.Status(http.StatusNoContent)
		return
	}
	if h.log != nil {
		h.log.Debugw("pubsub_push_received", "message_id", env.Message.MessageID, "subscription", env.Subscription)
	}
	h.services.HandleEvent(c.Request.Context(), payload)
	c.Status(http.StatusNoContent)
}
