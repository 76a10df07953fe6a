package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
)

func invokeErrorHandler(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)
	return rec
}

func TestErrorHandler_DomainErrorsStayOn200(t *testing.T) {
	rec := invokeErrorHandler(t, domain.ErrConnectionExists)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != false {
		t.Fatalf("expected success=false, got %+v", resp)
	}
	if resp["message"] == "" || resp["message"] == nil {
		t.Fatal("expected a human-readable message")
	}
}

func TestErrorHandler_WrappedDomainErrorsStillMatch(t *testing.T) {
	wrapped := errors.Join(errors.New("request connection"), domain.ErrInvalidReference)
	rec := invokeErrorHandler(t, wrapped)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestErrorHandler_HTTPErrorsKeepTheirStatus(t *testing.T) {
	rec := invokeErrorHandler(t, echo.NewHTTPError(http.StatusUnauthorized, "missing token"))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestErrorHandler_ForbiddenIsEnveloped(t *testing.T) {
	rec := invokeErrorHandler(t, echo.NewHTTPError(http.StatusForbidden, "you do not have permission to access this resource"))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := resp["success"]; !ok {
		t.Fatalf("403 response missing the uniform envelope, got %+v", resp)
	}
	if resp["success"] != false || resp["message"] == "" {
		t.Fatalf("expected success=false with a message, got %+v", resp)
	}
}

func TestErrorHandler_UnknownErrorsAre500(t *testing.T) {
	rec := invokeErrorHandler(t, errors.New("mongo timeout"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] == "mongo timeout" {
		t.Fatal("internal error details must not leak to clients")
	}
}
