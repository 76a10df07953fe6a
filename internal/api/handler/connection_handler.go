package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

// ConnectionHandler handles the client/therapist connection workflow routes.
type ConnectionHandler struct {
	service ports.ConnectionService
}

func NewConnectionHandler(service ports.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{service: service}
}

type respondRequest struct {
	RequestID string `json:"request_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

// Request handles POST /api/connections/:therapistId.
//
// @Summary      Send a connection request to a therapist
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        therapistId  path      string  true  "Therapist id"
// @Success      200          {object}  envelope
// @Router       /api/connections/{therapistId} [post]
func (h *ConnectionHandler) Request(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	conn, err := h.service.Request(c.Request().Context(), cl.UserID, c.Param("therapistId"))
	if err != nil {
		return err
	}

	return sendSuccess(c, conn, "Request sent.")
}

// Respond handles POST /api/connections/respond.
//
// @Summary      Approve or reject a pending request
// @Tags         connections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      respondRequest  true  "Request id and decision"
// @Success      200   {object}  envelope
// @Router       /api/connections/respond [post]
func (h *ConnectionHandler) Respond(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req respondRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	status := domain.ConnectionStatus(strings.ToUpper(req.Status))
	conn, err := h.service.Respond(c.Request().Context(), req.RequestID, cl.UserID, status)
	if err != nil {
		return err
	}

	return sendSuccess(c, conn, "Request updated.")
}

// ListByTherapist handles GET /api/connections/by-therapist/:limit/:offset.
//
// @Summary      List the authenticated therapist's connections
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        limit   path      int  true  "Page size"
// @Param        offset  path      int  true  "1-based page number"
// @Success      200     {object}  envelope
// @Router       /api/connections/by-therapist/{limit}/{offset} [get]
func (h *ConnectionHandler) ListByTherapist(c echo.Context) error {
	return h.list(c)
}

// ListByClient handles GET /api/connections/by-client/:limit/:offset.
//
// @Summary      List the authenticated client's connections
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        limit   path      int  true  "Page size"
// @Param        offset  path      int  true  "1-based page number"
// @Success      200     {object}  envelope
// @Router       /api/connections/by-client/{limit}/{offset} [get]
func (h *ConnectionHandler) ListByClient(c echo.Context) error {
	return h.list(c)
}

func (h *ConnectionHandler) list(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	page := pageFromParams(c)
	conns, err := h.service.ListForRole(c.Request().Context(), cl.UserID, cl.Role, page)
	if err != nil {
		return err
	}

	return sendSuccess(c, conns, "")
}

// Check handles GET /api/connections/check/:userId.
//
// @Summary      Check whether the caller has an approved connection with a user
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      string  true  "Other user id"
// @Success      200     {object}  envelope
// @Router       /api/connections/check/{userId} [get]
func (h *ConnectionHandler) Check(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	connected, err := h.service.IsConnected(c.Request().Context(), cl.UserID, cl.Role, c.Param("userId"))
	if err != nil {
		return err
	}

	return sendSuccess(c, map[string]bool{"connected": connected}, "")
}

// ListSent handles GET /api/connections/sent.
//
// @Summary      List the client's outstanding and approved requests
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope
// @Router       /api/connections/sent [get]
func (h *ConnectionHandler) ListSent(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	conns, err := h.service.ListSent(c.Request().Context(), cl.UserID)
	if err != nil {
		return err
	}

	return sendSuccess(c, conns, "")
}

// Remove handles POST /api/connections/:requestId/remove.
//
// @Summary      Delete a connection the caller is a party to
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        requestId  path      string  true  "Connection id"
// @Success      200        {object}  envelope
// @Router       /api/connections/{requestId}/remove [post]
func (h *ConnectionHandler) Remove(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.service.Remove(c.Request().Context(), c.Param("requestId"), cl.UserID, cl.Role); err != nil {
		return err
	}

	return sendSuccess(c, nil, "Request removed.")
}

// Unfriend handles POST /api/connections/:requestId/unfriend.
//
// @Summary      Delete a connection and notify the other party
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        requestId  path      string  true  "Connection id"
// @Success      200        {object}  envelope
// @Router       /api/connections/{requestId}/unfriend [post]
func (h *ConnectionHandler) Unfriend(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	conn, err := h.service.Unfriend(c.Request().Context(), c.Param("requestId"), cl.UserID, cl.Role)
	if err != nil {
		return err
	}

	return sendSuccess(c, conn, "Connection removed.")
}

// PairHistory handles GET /api/connections/pair/:clientId/:therapistId.
//
// @Summary      List every connection record between a client and a therapist
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        clientId     path      string  true  "Client id"
// @Param        therapistId  path      string  true  "Therapist id"
// @Success      200          {object}  envelope
// @Router       /api/connections/pair/{clientId}/{therapistId} [get]
func (h *ConnectionHandler) PairHistory(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	clientID := c.Param("clientId")
	therapistID := c.Param("therapistId")

	// Non-admin callers may only inspect pairs they belong to.
	if cl.Role != domain.RoleSuperAdmin && cl.UserID != clientID && cl.UserID != therapistID {
		return domain.ErrForbidden
	}

	conns, err := h.service.PairHistory(c.Request().Context(), clientID, therapistID)
	if err != nil {
		return err
	}

	return sendSuccess(c, conns, "")
}

// pageFromParams reads :limit/:offset path params into a ConnectionPage.
// Unparseable values fall back to zero, which the repository layer defaults.
func pageFromParams(c echo.Context) ports.ConnectionPage {
	limit, _ := strconv.ParseInt(c.Param("limit"), 10, 64)
	offset, _ := strconv.ParseInt(c.Param("offset"), 10, 64)
	return ports.ConnectionPage{Limit: limit, Offset: offset}
}
