// Package handler exposes the guestbook's HTTP surface: a paginated listing
// and a validated create endpoint.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"guestbook/internal/guard"
	"guestbook/internal/model"
	"guestbook/internal/store"
	"guestbook/internal/validate"
)

const (
	userAgentMaxLength = 500

	internalErrorMsg = "internal server error"
)

// MessageStore is the slice of the store the handlers depend on.
type MessageStore interface {
	List(ctx context.Context, page, limit int, usernameFilter string) ([]model.MessageListing, model.Pagination, error)
	Create(ctx context.Context, params store.CreateParams) (model.Message, error)
}

// ValidationError is a client-input rejection raised before any persistence
// attempt. Its reason is safe to return verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

type listResponse struct {
	Messages   []model.MessageListing `json:"messages"`
	Pagination model.Pagination       `json:"pagination"`
}

// ServeMessages handles GET /messages/get. Out-of-range page/limit values
// are clamped by the store rather than rejected.
func ServeMessages(db MessageStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		page := queryInt(r, "page", store.DefaultPage)
		limit := queryInt(r, "limit", store.DefaultLimit)
		username := r.URL.Query().Get("username")

		messages, pagination, err := db.List(ctx, page, limit, username)
		if err != nil {
			slog.ErrorContext(ctx, "failed to list messages",
				"error", err,
				"page", page,
				"limit", limit)
			respondError(w, http.StatusInternalServerError, internalErrorMsg)
			return
		}

		respondJSON(w, http.StatusOK, listResponse{
			Messages:   messages,
			Pagination: pagination,
		})
	}
}

type createRequest struct {
	Username   string `json:"username"`
	WebsiteURL string `json:"website_url"`
	Content    string `json:"content"`
	Email      string `json:"email"`
}

// CreateMessage handles POST /messages/add. Validation runs in a fixed
// order and short-circuits before any store write; the optional spam guard
// runs after validation and before the insert.
func CreateMessage(db MessageStore, g *guard.Guard, contentMax int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "request body must be valid JSON")
			return
		}

		params, err := validateCreate(req, contentMax)
		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				respondError(w, http.StatusBadRequest, vErr.Reason)
				return
			}
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		ip := clientIP(r)
		params.IPAddress = ip
		params.UserAgent = truncate(r.UserAgent(), userAgentMaxLength)

		if err := g.Check(ctx, r, ip); err != nil {
			switch {
			case errors.Is(err, guard.ErrTooManyMessages):
				respondError(w, http.StatusTooManyRequests, err.Error())
			case errors.Is(err, guard.ErrOriginNotAllowed), errors.Is(err, guard.ErrMissingUserAgent):
				respondError(w, http.StatusForbidden, err.Error())
			default:
				slog.ErrorContext(ctx, "spam guard check failed", "error", err, "ip", ip)
				respondError(w, http.StatusInternalServerError, internalErrorMsg)
			}
			return
		}

		message, err := db.Create(ctx, params)
		if err != nil {
			slog.ErrorContext(ctx, "failed to create message",
				"error", err,
				"username", params.Username,
				"ip", ip)
			respondError(w, http.StatusInternalServerError, internalErrorMsg)
			return
		}

		respondJSON(w, http.StatusCreated, message)
	}
}

// contentPolicy strips all markup from submitted content. Sanitization runs
// before validation so the emptiness and length checks apply to the text
// that will actually be stored. Usernames need no pass of their own: the
// username character class already rejects markup.
var contentPolicy = bluemonday.StrictPolicy()

// validateCreate applies the creation pre-conditions in their fixed order,
// short-circuiting on the first failure.
func validateCreate(req createRequest, contentMax int) (store.CreateParams, error) {
	username := strings.TrimSpace(req.Username)
	websiteURL := strings.TrimSpace(req.WebsiteURL)
	content := strings.TrimSpace(contentPolicy.Sanitize(req.Content))
	email := strings.TrimSpace(req.Email)

	switch {
	case username == "":
		return store.CreateParams{}, &ValidationError{Reason: "username must not be empty"}
	case !validate.Username(username):
		return store.CreateParams{}, &ValidationError{Reason: "username must be 2-50 characters: letters, digits, underscore, or CJK"}
	case email == "":
		return store.CreateParams{}, &ValidationError{Reason: "email must not be empty"}
	case !validate.Email(email):
		return store.CreateParams{}, &ValidationError{Reason: "email format is invalid"}
	case content == "":
		return store.CreateParams{}, &ValidationError{Reason: "content must not be empty"}
	case utf8.RuneCountInString(content) > contentMax:
		return store.CreateParams{}, &ValidationError{Reason: "content must not exceed " + strconv.Itoa(contentMax) + " characters"}
	case websiteURL != "" && !validate.WebsiteURL(websiteURL):
		return store.CreateParams{}, &ValidationError{Reason: "website URL format is invalid"}
	}

	return store.CreateParams{
		Username:   username,
		WebsiteURL: websiteURL,
		Content:    content,
		Email:      email,
	}, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// clientIP derives the source address from the connection's remote address,
// never from a client-supplied field.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
