package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postqueue/internal/service"
	"github.com/maheshrc27/postqueue/internal/transfer"
	"github.com/maheshrc27/postqueue/pkg/utils"
)

const reorderSuccessMsg = "New queue order was successfully saved."

type QueueHandler struct {
	q      service.QueueService
	posts  service.PostService
	secret string
}

func NewQueueHandler(q service.QueueService, posts service.PostService, secret string) *QueueHandler {
	return &QueueHandler{q: q, posts: posts, secret: secret}
}

// ListQueued returns the queued posts of a type in publishing order along
// with the next scheduled run.
func (h *QueueHandler) ListQueued(c *fiber.Ctx) error {
	postType := c.Params("type")
	if !h.q.CanTypeBeQueued(postType) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post type has no queue",
		})
	}

	queued, err := h.q.ListQueued(c.Context(), postType)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list queued posts",
		})
	}

	listing := transfer.QueueListing{PostType: postType, Posts: make([]transfer.QueuedEntry, 0, len(queued))}
	for _, p := range queued {
		listing.Posts = append(listing.Posts, transfer.QueuedEntry{ID: p.ID, Title: p.Title, Order: p.Order})
	}
	if next, ok := h.q.NextScheduled(postType); ok {
		listing.NextRun = &next
	}
	return c.JSON(listing)
}

// Reorder saves a new queue order. Responses use the
// {"success": bool, "data": {...}} envelope.
func (h *QueueHandler) Reorder(c *fiber.Ctx) error {
	var in transfer.QueueReorder
	if err := c.BodyParser(&in); err != nil {
		return reorderError(c, fiber.StatusBadRequest)
	}
	if err := transfer.Validate(&in); err != nil {
		return reorderError(c, fiber.StatusBadRequest)
	}
	if !utils.VerifyNonce(h.secret, in.Nonce, NonceReorder, GetUserID(c)) {
		return reorderError(c, fiber.StatusForbidden)
	}

	ids, err := ParseOrder(in.Order)
	if err != nil || len(ids) == 0 {
		return reorderError(c, fiber.StatusBadRequest)
	}

	if err := h.posts.Reorder(c.Context(), GetUser(c), ids); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return reorderError(c, fiber.StatusForbidden)
		}
		return reorderError(c, fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"msg": reorderSuccessMsg},
	})
}

func reorderError(c *fiber.Ctx, status int) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"data":    fiber.Map{},
	})
}

// ParseOrder decodes a JSON array of post IDs. IDs may be numbers or numeric
// strings; escaping backslashes are ignored.
func ParseOrder(raw string) ([]int64, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(strings.ReplaceAll(raw, `\`, ""))))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case json.Number:
			s = v.String()
		case string:
			s = v
		default:
			return nil, fmt.Errorf("invalid post id %v", item)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid post id %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
