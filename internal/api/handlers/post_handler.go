package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postqueue/internal/service"
	"github.com/maheshrc27/postqueue/internal/transfer"
	"github.com/maheshrc27/postqueue/pkg/utils"
)

type PostHandler struct {
	s      service.PostService
	secret string
}

func NewPostHandler(service service.PostService, secret string) *PostHandler {
	return &PostHandler{s: service, secret: secret}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	return h.save(c, 0)
}

func (h *PostHandler) UpdatePost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}
	return h.save(c, int64(id))
}

func (h *PostHandler) save(c *fiber.Ctx, id int64) error {
	var ps transfer.PostSave
	if err := c.BodyParser(&ps); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}
	if err := transfer.Validate(&ps); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	ps.ID = id

	post, err := h.s.Save(c.Context(), GetUser(c), &ps)
	if err != nil {
		return serviceError(c, err)
	}

	status := fiber.StatusOK
	if id == 0 {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(post)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	post, err := h.s.Get(c.Context(), int64(id))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	posts, err := h.s.List(c.Context(), c.Query("post_type"), c.Query("status"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}
	return c.JSON(posts)
}

func (h *PostHandler) TrashPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	if err := h.s.Trash(c.Context(), GetUser(c), int64(id)); err != nil {
		return serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// ToggleQueue handles the row action that moves one post in or out of the
// queue.
func (h *PostHandler) ToggleQueue(c *fiber.Ctx) error {
	var in transfer.QueueToggle
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse query",
		})
	}
	if err := transfer.Validate(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	user := GetUser(c)
	if !utils.VerifyNonce(h.secret, in.Nonce, NonceToggle, GetUserID(c)) {
		return serviceError(c, service.ErrInvalidNonce)
	}

	post, err := h.s.ToggleQueue(c.Context(), user, in.PostID, in.Do)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(post)
}
