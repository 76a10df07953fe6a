package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
)

// AdminHandler serves super-admin moderation routes plus the user-facing
// report endpoint.
type AdminHandler struct {
	admin       ports.AdminService
	connections ports.ConnectionService
}

func NewAdminHandler(admin ports.AdminService, connections ports.ConnectionService) *AdminHandler {
	return &AdminHandler{admin: admin, connections: connections}
}

type tagRequest struct {
	Name string `json:"name" validate:"required"`
}

type reportRequest struct {
	ReportedID string `json:"reported_id" validate:"required"`
	Reason     string `json:"reason" validate:"required"`
}

// CheckPair handles GET /api/admin/connections/check/:clientId/:therapistId.
//
// @Summary      Inspect every connection record between a pair
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        clientId     path      string  true  "Client id"
// @Param        therapistId  path      string  true  "Therapist id"
// @Success      200          {object}  envelope
// @Router       /api/admin/connections/check/{clientId}/{therapistId} [get]
func (h *AdminHandler) CheckPair(c echo.Context) error {
	conns, err := h.connections.PairHistory(c.Request().Context(), c.Param("clientId"), c.Param("therapistId"))
	if err != nil {
		return err
	}
	return sendSuccess(c, conns, "")
}

// ConnectionsByTherapist handles GET /api/admin/connections/by-therapist/:therapistId.
//
// @Summary      List a therapist's approved connections
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        therapistId  path      string  true  "Therapist id"
// @Success      200          {object}  envelope
// @Router       /api/admin/connections/by-therapist/{therapistId} [get]
func (h *AdminHandler) ConnectionsByTherapist(c echo.Context) error {
	conns, err := h.connections.ApprovedForTherapist(c.Request().Context(), c.Param("therapistId"))
	if err != nil {
		return err
	}
	return sendSuccess(c, conns, "")
}

// PendingClients handles GET /api/admin/clients/pending/:limit/:offset.
func (h *AdminHandler) PendingClients(c echo.Context) error {
	return h.listUsers(c, domain.RoleClient, false)
}

// ApprovedClients handles GET /api/admin/clients/approved/:limit/:offset.
func (h *AdminHandler) ApprovedClients(c echo.Context) error {
	return h.listUsers(c, domain.RoleClient, true)
}

// PendingTherapists handles GET /api/admin/therapists/pending/:limit/:offset.
func (h *AdminHandler) PendingTherapists(c echo.Context) error {
	return h.listUsers(c, domain.RoleTherapist, false)
}

// ApprovedTherapists handles GET /api/admin/therapists/approved/:limit/:offset.
func (h *AdminHandler) ApprovedTherapists(c echo.Context) error {
	return h.listUsers(c, domain.RoleTherapist, true)
}

func (h *AdminHandler) listUsers(c echo.Context, role domain.Role, approved bool) error {
	limit, _ := strconv.ParseInt(c.Param("limit"), 10, 64)
	offset, _ := strconv.ParseInt(c.Param("offset"), 10, 64)

	users, err := h.admin.ListUsers(c.Request().Context(), ports.RoleListFilter{
		Role:     role,
		Approved: &approved,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return err
	}

	return sendSuccess(c, users, "")
}

// ApproveTherapist handles POST /api/admin/therapists/:id/approve.
func (h *AdminHandler) ApproveTherapist(c echo.Context) error {
	return h.approve(c, true)
}

// RejectTherapist handles POST /api/admin/therapists/:id/reject.
func (h *AdminHandler) RejectTherapist(c echo.Context) error {
	return h.approve(c, false)
}

// ApproveClient handles POST /api/admin/clients/:id/approve.
func (h *AdminHandler) ApproveClient(c echo.Context) error {
	return h.approve(c, true)
}

func (h *AdminHandler) approve(c echo.Context, approved bool) error {
	user, err := h.admin.ApproveUser(c.Request().Context(), c.Param("id"), approved)
	if err != nil {
		return err
	}

	msg := "User approved."
	if !approved {
		msg = "User rejected."
	}
	return sendSuccess(c, user, msg)
}

// BlockUser handles POST /api/admin/users/:id/block.
func (h *AdminHandler) BlockUser(c echo.Context) error {
	return h.setBlocked(c, true)
}

// UnblockUser handles POST /api/admin/users/:id/unblock.
func (h *AdminHandler) UnblockUser(c echo.Context) error {
	return h.setBlocked(c, false)
}

func (h *AdminHandler) setBlocked(c echo.Context, blocked bool) error {
	user, err := h.admin.SetBlocked(c.Request().Context(), c.Param("id"), blocked)
	if err != nil {
		return err
	}

	msg := "User blocked."
	if !blocked {
		msg = "User unblocked."
	}
	return sendSuccess(c, user, msg)
}

// DeleteUser handles DELETE /api/admin/users/:id.
//
// @Summary      Delete a user and every connection they are a party to
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  envelope
// @Router       /api/admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.admin.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return sendSuccess(c, nil, "User deleted.")
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.admin.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return sendSuccess(c, stats, "")
}

// CreateTag handles POST /api/admin/tags.
func (h *AdminHandler) CreateTag(c echo.Context) error {
	var req tagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tag, err := h.admin.CreateTag(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return sendSuccess(c, tag, "Tag created.")
}

// UpdateTag handles PUT /api/admin/tags/:id.
func (h *AdminHandler) UpdateTag(c echo.Context) error {
	var req tagRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tag, err := h.admin.UpdateTag(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return err
	}
	return sendSuccess(c, tag, "Tag updated.")
}

// DeleteTag handles DELETE /api/admin/tags/:id.
func (h *AdminHandler) DeleteTag(c echo.Context) error {
	if err := h.admin.DeleteTag(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return sendSuccess(c, nil, "Tag deleted.")
}

// Report handles POST /api/users/report.
//
// @Summary      Report a user for moderation review
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      reportRequest  true  "Reported user and reason"
// @Success      200   {object}  envelope
// @Router       /api/users/report [post]
func (h *AdminHandler) Report(c echo.Context) error {
	cl, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req reportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	report, err := h.admin.ReportUser(c.Request().Context(), cl.UserID, req.ReportedID, req.Reason)
	if err != nil {
		return err
	}
	return sendSuccess(c, report, "Report submitted.")
}

// ListReports handles GET /api/admin/reports/:limit/:offset.
func (h *AdminHandler) ListReports(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.Param("limit"), 10, 64)
	offset, _ := strconv.ParseInt(c.Param("offset"), 10, 64)

	reports, err := h.admin.ListReports(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	return sendSuccess(c, reports, "")
}

// ResolveReport handles POST /api/admin/reports/:id/resolve.
func (h *AdminHandler) ResolveReport(c echo.Context) error {
	report, err := h.admin.ResolveReport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return sendSuccess(c, report, "Report resolved.")
}
