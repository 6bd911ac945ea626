package httpapi

import (
	"errors"

	"github.com/firepit/infernos/internal/auth"
	"github.com/firepit/infernos/internal/domain"
	"github.com/firepit/infernos/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	svc *service.Service
	log *zap.Logger
}

func NewHandler(svc *service.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

type syncUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Bio      string `json:"bio"`
	Path     string `json:"path"`
}

func (h *Handler) SyncUser(c *fiber.Ctx) error {
	key, err := auth.Identity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req syncUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	u, err := h.svc.SyncUser(c.Context(), key, req.Username, req.Name, req.Image, req.Bio, req.Path)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"id": u.ID, "key": u.Key, "username": u.Username,
		"name": u.Name, "image": u.Image, "bio": u.Bio, "onboarded": u.Onboarded,
	})
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	u, err := h.svc.FetchUser(c.Params("key"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"id": u.ID, "key": u.Key, "username": u.Username,
		"name": u.Name, "image": u.Image, "bio": u.Bio, "onboarded": u.Onboarded,
	})
}

func (h *Handler) GetUserPosts(c *fiber.Ctx) error {
	accountType := domain.AccountType(c.Query("type", string(domain.AccountUser)))
	nodes, err := h.svc.FetchUserPosts(c.Params("key"), accountType)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"infernos": nodes})
}

type createInfernoRequest struct {
	Text    string `json:"text"`
	CultKey string `json:"cult_key"`
	Path    string `json:"path"`
}

func (h *Handler) CreateInferno(c *fiber.Ctx) error {
	key, err := auth.Identity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req createInfernoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	in, err := h.svc.CreateInferno(c.Context(), req.Text, key, req.CultKey, req.Path)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(in)
}

func (h *Handler) GetInferno(c *fiber.Ctx) error {
	depth := c.QueryInt("depth", service.DefaultReplyDepth)
	node, err := h.svc.FetchInferno(c.Params("id"), depth)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(node)
}

type addCommentRequest struct {
	Text string `json:"text"`
	Path string `json:"path"`
}

func (h *Handler) AddComment(c *fiber.Ctx) error {
	key, err := auth.Identity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req addCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	in, err := h.svc.AddComment(c.Context(), c.Params("id"), req.Text, key, req.Path)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(in)
}

func (h *Handler) GetFeed(c *fiber.Ctx) error {
	page, err := h.svc.FetchPosts(c.QueryInt("page", 1), c.QueryInt("size", 20))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(page)
}

type createCultRequest struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image"`
	Bio      string `json:"bio"`
}

func (h *Handler) CreateCult(c *fiber.Ctx) error {
	key, err := auth.Identity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req createCultRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	cult, err := h.svc.CreateCult(c.Context(), req.Key, req.Name, req.Username, req.Image, req.Bio, key)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cult)
}

func (h *Handler) ListCults(c *fiber.Ctx) error {
	page, err := h.svc.FetchCults(domain.CultFilter{
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("size", 20),
		SortAsc:  c.Query("sort") == "asc",
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(page)
}

func (h *Handler) GetCult(c *fiber.Ctx) error {
	view, err := h.svc.FetchCultDetails(c.Params("key"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(view)
}

func (h *Handler) GetCultPosts(c *fiber.Ctx) error {
	posts, err := h.svc.FetchCultPosts(c.Params("key"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(posts)
}

type updateCultRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

func (h *Handler) UpdateCult(c *fiber.Ctx) error {
	var req updateCultRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	cult, err := h.svc.UpdateCultInfo(c.Context(), c.Params("key"), req.Name, req.Username, req.Image)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(cult)
}

func (h *Handler) JoinCult(c *fiber.Ctx) error {
	key, err := auth.Identity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	cult, err := h.svc.JoinCult(c.Context(), c.Params("key"), key)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(cult)
}

func (h *Handler) LeaveCult(c *fiber.Ctx) error {
	key, err := auth.Identity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := h.svc.LeaveCult(c.Context(), key, c.Params("key")); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) DeleteCult(c *fiber.Ctx) error {
	cult, err := h.svc.DeleteCult(c.Context(), c.Params("key"), c.Query("path"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(cult)
}

// respondError maps domain error kinds to HTTP statuses. PartialFailure means
// some sub-steps committed; the caller re-runs the same operation to converge.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrAlreadyMember):
		status = fiber.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrPartialFailure):
		h.log.Error("partial failure", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(), "retryable": true,
		})
	default:
		h.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
