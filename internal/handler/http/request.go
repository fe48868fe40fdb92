package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

// decodeJSON decodes the body into dst and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		slog.Error(op+" decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	slog.Error(op+" decode error", "error", err)
	response.BadRequest(w, "Invalid request format", nil)
	return false
}

func claimString(r *http.Request, key string) (string, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", false
	}
	value, ok := claims[key].(string)
	return value, ok && value != ""
}

// userIDFrom returns the caller's user id, writing a 401 when it is missing.
func userIDFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := claimString(r, "user_id")
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return "", false
	}
	return userID, true
}

// employeeIDFrom returns the caller's employee id, writing a 403 for accounts without one.
func employeeIDFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	employeeID, ok := claimString(r, "employee_id")
	if !ok {
		slog.Error("employee_id not found in JWT claims")
		response.Forbidden(w, "Employee ID not found in token")
		return "", false
	}
	return employeeID, true
}

// idParam reads a uuid path parameter. A malformed id cannot name a row, so it is
// answered with notFound before any query runs.
func idParam(w http.ResponseWriter, r *http.Request, key string, notFound error) (string, bool) {
	id := chi.URLParam(r, key)
	if !validator.IsValidUUID(id) {
		response.HandleError(w, notFound)
		return "", false
	}
	return id, true
}

func requestMeta(r *http.Request) attendance.RequestMeta {
	return attendance.RequestMeta{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

// queryInt parses an integer query parameter, returning def when it is absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func paginationFrom(r *http.Request) utils.Pagination {
	var p utils.Pagination
	if page, err := queryInt(r, "page", 1); err == nil {
		p.Page = page
	}
	if size, err := queryInt(r, "page_size", utils.DefaultPageSize); err == nil {
		p.PageSize = size
	}
	return p.Normalize()
}

// monthYearFrom reads the month and year query parameters.
func monthYearFrom(w http.ResponseWriter, r *http.Request, defMonth, defYear int) (month, year int, ok bool) {
	month, err := queryInt(r, "month", defMonth)
	if err != nil {
		response.BadRequest(w, "invalid month parameter", nil)
		return 0, 0, false
	}
	year, err = queryInt(r, "year", defYear)
	if err != nil {
		response.BadRequest(w, "invalid year parameter", nil)
		return 0, 0, false
	}
	return month, year, true
}
