package chat_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evghenimelnic/chat-server/modules/chat"
	"github.com/evghenimelnic/chat-server/pkg/realtime"
)

func newTestRouter(store *fakeMessageStore) http.Handler {
	reg := realtime.NewRegistry()
	svc := chat.NewService(store, &fakeRoomStore{}, &fakeSessionStore{}, realtime.NewRouter(reg, nil), nil, nil, nil)
	return chat.Router(svc, chat.NewWSHandler(svc, reg, nil))
}

func TestHistoryEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("returns stored history as json", func(t *testing.T) {
		t.Parallel()
		store := &fakeMessageStore{history: []chat.Message{{ID: "m1"}, {ID: "m2"}}}
		rec := httptest.NewRecorder()

		newTestRouter(store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/common/history", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"m1"`)
		assert.Contains(t, rec.Body.String(), `"m2"`)
	})

	t.Run("empty history is an empty array", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()

		newTestRouter(&fakeMessageStore{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/lobby/history", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())
	})

	t.Run("rejects non-positive limit", func(t *testing.T) {
		t.Parallel()
		for _, limit := range []string{"0", "-5", "abc"} {
			rec := httptest.NewRecorder()
			newTestRouter(&fakeMessageStore{}).ServeHTTP(rec,
				httptest.NewRequest(http.MethodGet, "/common/history?limit="+limit, nil))
			assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
		}
	})

	t.Run("rejects malformed before timestamp", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		newTestRouter(&fakeMessageStore{}).ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/p2p/s1/history?before=yesterday", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRoomEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("create returns 201 with normalized tags", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/rooms",
			strings.NewReader(`{"name":"lobby","tags":[" Jazz "]}`))

		newTestRouter(&fakeMessageStore{}).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"jazz"`)
	})

	t.Run("create without a name is unprocessable", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(`{}`))

		newTestRouter(&fakeMessageStore{}).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("create with a bad body is a bad request", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(`{`))

		newTestRouter(&fakeMessageStore{}).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list rejects malformed coordinates", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		newTestRouter(&fakeMessageStore{}).ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/rooms?latitude=north", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSessionEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("create returns 201", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/p2p/sessions",
			strings.NewReader(`{"participants":["alice","bob"]}`))

		newTestRouter(&fakeMessageStore{}).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"sess1"`)
	})

	t.Run("single participant is unprocessable", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/p2p/sessions",
			strings.NewReader(`{"participants":["alice"]}`))

		newTestRouter(&fakeMessageStore{}).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
