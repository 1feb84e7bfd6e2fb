package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/api"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/apiclient"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/content"
	"github.com/ShotaGhoona/acrique-v1-sub002/pkg/query"
)

// errUnauthenticated rejects console pages for sessions without a signed-in admin.
var errUnauthenticated = errors.New("admin sign-in required")

// ErrorBody is the JSON body of every failed page.
type ErrorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
}

// Page wraps a view model with the navigation of its section.
type Page struct {
	Nav  []content.NavItem `json:"nav"`
	Data any               `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFallback renders fallback copy in place of a page body.
func writeFallback(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorBody{Error: message, Kind: apiclient.KindValidation.String()})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := content.LoadFailed
	kind := apiclient.KindOf(err)

	var apiErr *apiclient.Error
	switch {
	case errors.Is(err, errUnauthenticated):
		status, message = http.StatusUnauthorized, content.LoginRequired
	case errors.Is(err, query.ErrClosed), errors.Is(err, ErrSessionsClosed):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		message = content.NetworkFailed
	case errors.As(err, &apiErr):
		switch apiErr.Kind {
		case apiclient.KindHTTP:
			status = apiErr.Status
			if apiErr.Message != "" {
				message = apiErr.Message
			}
		case apiclient.KindNetwork:
			status, message = http.StatusBadGateway, content.NetworkFailed
		case apiclient.KindDecode:
			status = http.StatusBadGateway
		case apiclient.KindValidation:
			status, message = http.StatusBadRequest, content.InvalidRequest
		}
	}

	event := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Msg("Page request failed.")
	writeJSON(w, status, ErrorBody{Error: message, Kind: kind.String(), Retryable: apiclient.IsRetryable(err)})
}

// load waits for the observer's data and unsubscribes.
func load[T any](ctx context.Context, o *query.Observer[T]) (T, error) {
	defer o.Close()
	r, err := o.Await(ctx)
	return r.Data, err
}

// renderPage renders the observer's data as a page of the section nav belongs to.
func renderPage[T any](s *Server, w http.ResponseWriter, r *http.Request, nav []content.NavItem, o *query.Observer[T]) {
	data, err := load(r.Context(), o)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Page{Nav: nav, Data: data})
}

// pathID parses a positive numeric route parameter.
func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func listParams(r *http.Request) api.ListParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return api.ListParams{
		Page:   page,
		Limit:  limit,
		Status: q.Get("status"),
		Search: q.Get("search"),
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apiclient.ValidationError("malformed request body: %v", err)
	}
	return nil
}
