package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/boardnotify/handler"
	"github.com/dmitrymomot/boardnotify/pkg/binder"
)

var errMissing = errors.New("thing not found")

type itemRequest struct {
	ID    int64 `path:"id"`
	Limit int   `query:"limit"`
}

func pathParam(name, value string) func(*http.Request, string) string {
	return func(_ *http.Request, key string) string {
		if key == name {
			return value
		}
		return ""
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return *body.Error
}

func TestWrap(t *testing.T) {
	t.Parallel()

	errorHandler := handler.NewErrorHandler(nil,
		handler.ErrorMapping{Target: errMissing, Status: http.StatusNotFound, Code: "not_found"},
	)

	h := handler.HandlerFunc[handler.Context, itemRequest](func(ctx handler.Context, req itemRequest) handler.Response {
		if req.ID == 404 {
			return handler.Error(errMissing)
		}
		return handler.JSON(map[string]any{"id": req.ID, "limit": req.Limit})
	})

	wrap := func(id string) http.HandlerFunc {
		return handler.Wrap(h,
			handler.WithBinders[handler.Context, itemRequest](
				binder.Path(pathParam("id", id)),
				binder.Query(),
			),
			handler.WithErrorHandler[handler.Context, itemRequest](errorHandler),
		)
	}

	t.Run("binds and renders", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		wrap("7")(w, httptest.NewRequest(http.MethodGet, "/items/7?limit=3", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"id":7,"limit":3}`, w.Body.String())
	})

	t.Run("binding error is a bad request", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		wrap("seven")(w, httptest.NewRequest(http.MethodGet, "/items/seven", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		detail := decodeError(t, w)
		assert.Equal(t, "bad_request", detail.Code)
		assert.Contains(t, detail.Message, "invalid path parameter")
	})

	t.Run("mapped domain error", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		wrap("404")(w, httptest.NewRequest(http.MethodGet, "/items/404", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		detail := decodeError(t, w)
		assert.Equal(t, "not_found", detail.Code)
		assert.Equal(t, errMissing.Error(), detail.Message)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		nilHandler := handler.Wrap(handler.HandlerFunc[handler.Context, struct{}](
			func(handler.Context, struct{}) handler.Response { return nil },
		))

		w := httptest.NewRecorder()
		nilHandler(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		detail := decodeError(t, w)
		assert.NotContains(t, detail.Message, handler.ErrNilResponse.Error())
	})

	t.Run("non applicable binders are skipped", func(t *testing.T) {
		t.Parallel()
		type body struct {
			Name string `json:"name"`
		}
		h := handler.Wrap(handler.HandlerFunc[handler.Context, body](func(_ handler.Context, req body) handler.Response {
			return handler.JSON(req)
		}), handler.WithBinders[handler.Context, body](binder.JSON()))

		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"name":""}`, w.Body.String())
	})

	t.Run("decorators run outermost first", func(t *testing.T) {
		t.Parallel()
		var order []string
		mark := func(name string) handler.Decorator[handler.Context, struct{}] {
			return func(next handler.HandlerFunc[handler.Context, struct{}]) handler.HandlerFunc[handler.Context, struct{}] {
				return func(ctx handler.Context, req struct{}) handler.Response {
					order = append(order, name)
					return next(ctx, req)
				}
			}
		}
		h := handler.Wrap(handler.HandlerFunc[handler.Context, struct{}](
			func(handler.Context, struct{}) handler.Response { return handler.Empty() },
		),
			handler.WithDecorators(mark("outer"), mark("inner")),
		)

		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodDelete, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, []string{"outer", "inner"}, order)
	})
}

func TestNewErrorHandler(t *testing.T) {
	t.Parallel()

	errUnavailable := errors.New("closed")
	errorHandler := handler.NewErrorHandler(nil,
		handler.ErrorMapping{Target: errUnavailable, Status: http.StatusServiceUnavailable},
	)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "http error", err: handler.NewHTTPError(http.StatusConflict, ""), wantStatus: http.StatusConflict, wantCode: "conflict"},
		{name: "mapped", err: errUnavailable, wantStatus: http.StatusServiceUnavailable, wantCode: "service_unavailable"},
		{name: "wrapped mapped", err: errors.Join(errUnavailable, errors.New("detail")), wantStatus: http.StatusServiceUnavailable, wantCode: "service_unavailable"},
		{name: "unsupported media type", err: binder.ErrUnsupportedMediaType, wantStatus: http.StatusUnsupportedMediaType, wantCode: "unsupported_media_type"},
		{name: "unknown", err: errors.New("db password leaked"), wantStatus: http.StatusInternalServerError, wantCode: "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			errorHandler(handler.NewContext(w, r), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			detail := decodeError(t, w)
			assert.Equal(t, tt.wantCode, detail.Code)
			if tt.wantStatus >= http.StatusInternalServerError {
				assert.False(t, strings.Contains(detail.Message, tt.err.Error()))
			}
		})
	}

	t.Run("cancelled request writes nothing", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

		errorHandler(handler.NewContext(w, r), context.Canceled)

		assert.Empty(t, w.Body.String())
	})
}

func TestJSONError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	resp := handler.JSONError(handler.NewHTTPError(http.StatusNotFound, "missing"))
	require.NoError(t, resp.Render(w, r))

	assert.Equal(t, http.StatusNotFound, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, "missing", detail.Code)
	assert.Equal(t, "missing", detail.Message)
}

func TestContext(t *testing.T) {
	t.Parallel()

	type key struct{}
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "v"))
	r := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	c := handler.NewContext(w, r)
	assert.Same(t, r, c.Request())
	assert.Equal(t, "v", c.Value(key{}))
	require.NoError(t, c.Err())

	cancel()
	<-c.Done()
	assert.ErrorIs(t, c.Err(), context.Canceled)
}
