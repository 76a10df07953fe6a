package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

// TherapistHandler serves client-facing discovery search and the public
// experience tag listing.
type TherapistHandler struct {
	discovery ports.DiscoveryService
	tags      ports.TagRepository
}

func NewTherapistHandler(discovery ports.DiscoveryService, tags ports.TagRepository) *TherapistHandler {
	return &TherapistHandler{discovery: discovery, tags: tags}
}

// Search handles GET /api/therapists/search.
//
// @Summary      Search therapists the client has no connection with
// @Tags         therapists
// @Produce      json
// @Security     BearerAuth
// @Param        gender  query     string  false  "Filter by gender"
// @Param        tags    query     string  false  "Comma-separated experience tag ids"
// @Param        name    query     string  false  "Name prefix"
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "1-based page number"
// @Success      200     {object}  envelope
// @Router       /api/therapists/search [get]
func (h *TherapistHandler) Search(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	offset, _ := strconv.ParseInt(c.QueryParam("offset"), 10, 64)

	var tagIDs []string
	if raw := c.QueryParam("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tagIDs = append(tagIDs, t)
			}
		}
	}

	cards, err := h.discovery.Search(c.Request().Context(), ports.DiscoverySearchInput{
		ClientID: cl.UserID,
		Gender:   c.QueryParam("gender"),
		TagIDs:   tagIDs,
		Name:     c.QueryParam("name"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}

	return sendSuccess(c, cards, "")
}

// ListTags handles GET /api/tags.
//
// @Summary      List experience tags
// @Tags         tags
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Router       /api/tags [get]
func (h *TherapistHandler) ListTags(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	offset, _ := strconv.ParseInt(c.QueryParam("offset"), 10, 64)

	tags, err := h.tags.List(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	return sendSuccess(c, tags, "")
}
