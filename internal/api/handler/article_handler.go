package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

// ArticleHandler serves therapist-authored articles.
type ArticleHandler struct {
	service ports.ArticleService
}

func NewArticleHandler(service ports.ArticleService) *ArticleHandler {
	return &ArticleHandler{service: service}
}

type createArticleRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// Create handles POST /api/articles.
//
// @Summary      Publish an article
// @Tags         articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createArticleRequest  true  "Article payload"
// @Success      200   {object}  envelope
// @Router       /api/articles [post]
func (h *ArticleHandler) Create(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createArticleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	article, err := h.service.Create(c.Request().Context(), cl.UserID, req.Title, req.Content)
	if err != nil {
		return err
	}

	return sendSuccess(c, article, "Article published.")
}

// List handles GET /api/articles.
//
// @Summary      List published articles newest-first
// @Tags         articles
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "1-based page number"
// @Success      200     {object}  envelope
// @Router       /api/articles [get]
func (h *ArticleHandler) List(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	offset, _ := strconv.ParseInt(c.QueryParam("offset"), 10, 64)

	articles, err := h.service.ListPublic(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	return sendSuccess(c, articles, "")
}

// Get handles GET /api/articles/:id.
//
// @Summary      Fetch one article with its author
// @Tags         articles
// @Produce      json
// @Param        id   path      string  true  "Article id"
// @Success      200  {object}  envelope
// @Router       /api/articles/{id} [get]
func (h *ArticleHandler) Get(c echo.Context) error {
	article, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return sendSuccess(c, article, "")
}

// Delete handles DELETE /api/articles/:id.
//
// @Summary      Delete an article (author or super-admin)
// @Tags         articles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Article id"
// @Success      200  {object}  envelope
// @Router       /api/articles/{id} [delete]
func (h *ArticleHandler) Delete(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), cl.UserID, cl.Role); err != nil {
		return err
	}

	return sendSuccess(c, nil, "Article deleted.")
}
