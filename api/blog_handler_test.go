package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/blogs-service/config"
	"github.com/rpupo63/blogs-service/database"
	"github.com/rpupo63/blogs-service/database/dbtest"
	"github.com/rpupo63/blogs-service/models"
)

func newTestRouter(t *testing.T) (http.Handler, database.Database) {
	t.Helper()
	db := dbtest.NewSQLite(t)
	return newRouter(db, withConfig(config.Default())), db
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func createBlog(t *testing.T, h http.Handler, title, body string) models.Blog {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"title": title, "body": body})
	require.NoError(t, err)

	rr := doRequest(t, h, http.MethodPost, "/blogs", string(payload))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var blog models.Blog
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &blog))
	return blog
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return resp
}

func TestBlogHandler_Lifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	created := createBlog(t, router, "First", "Hello")
	assert.NotZero(t, created.ID)
	assert.Equal(t, "First", created.Title)
	assert.Equal(t, "Hello", created.Body)

	path := fmt.Sprintf("/blogs/%d", created.ID)

	rr := doRequest(t, router, http.MethodGet, path, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"title":"First","body":"Hello"}`, created.ID), rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	rr = doRequest(t, router, http.MethodPut, path, `{"title":"Renamed"}`)
	require.Equal(t, http.StatusAccepted, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = doRequest(t, router, http.MethodGet, path, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"title":"Renamed","body":"Hello"}`, created.ID), rr.Body.String())

	rr = doRequest(t, router, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = doRequest(t, router, http.MethodGet, path, "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"details":"Blog with id %d not found."}`, created.ID), rr.Body.String())

	rr = doRequest(t, router, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBlogHandler_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)
	want := `{"details":"Blog with id 999999 not found."}`

	tests := []struct {
		name   string
		method string
		body   string
	}{
		{name: "get", method: http.MethodGet},
		{name: "update", method: http.MethodPut, body: `{"title":"x"}`},
		{name: "empty update", method: http.MethodPut, body: `{}`},
		{name: "delete", method: http.MethodDelete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, tt.method, "/blogs/999999", tt.body)
			assert.Equal(t, http.StatusNotFound, rr.Code)
			assert.JSONEq(t, want, rr.Body.String())
		})
	}
}

func TestBlogHandler_List(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodGet, "/blogs", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	want := make(map[int64]models.Blog)
	for i := 0; i < 5; i++ {
		b := createBlog(t, router, gofakeit.Sentence(3), gofakeit.Sentence(10))
		want[b.ID] = b
	}

	rr = doRequest(t, router, http.MethodGet, "/blogs", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got []models.Blog
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, len(want))
	for _, b := range got {
		assert.Equal(t, want[b.ID], b)
	}
}

func TestBlogHandler_Create_Validation(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "missing title", body: `{"body":"b"}`, wantField: "title"},
		{name: "missing body", body: `{"title":"t"}`, wantField: "body"},
		{name: "null title", body: `{"title":null,"body":"b"}`, wantField: "title"},
		{name: "title not a string", body: `{"title":12,"body":"b"}`, wantField: "title"},
		{name: "empty object", body: `{}`, wantField: "title"},
		{name: "not json", body: `not json`},
		{name: "no body"},
		{name: "trailing object", body: `{"title":"a","body":"b"}{"x":1}`},
		{name: "trailing garbage", body: `{"title":"a","body":"b"} trailing`},
		{name: "null document", body: `null`},
		{name: "array document", body: `[{"title":"a","body":"b"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, http.MethodPost, "/blogs", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
			resp := decodeError(t, rr)
			assert.NotEmpty(t, resp.Details)
			assert.Equal(t, tt.wantField, resp.Field)
		})
	}

	rr := doRequest(t, router, http.MethodGet, "/blogs", "")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestBlogHandler_Create_EmptyStrings(t *testing.T) {
	router, _ := newTestRouter(t)

	blog := createBlog(t, router, "", "")
	assert.NotZero(t, blog.ID)
	assert.Empty(t, blog.Title)
	assert.Empty(t, blog.Body)
}

func TestBlogHandler_Create_IgnoresClientID(t *testing.T) {
	router, _ := newTestRouter(t)

	first := createBlog(t, router, "a", "b")
	rr := doRequest(t, router, http.MethodPost, "/blogs", fmt.Sprintf(`{"id":%d,"title":"c","body":"d"}`, first.ID))
	require.Equal(t, http.StatusCreated, rr.Code)

	var second models.Blog
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &second))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestBlogHandler_Create_TooLarge(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"title":"` + strings.Repeat("a", int(maxBodyBytes)) + `","body":"b"}`
	rr := doRequest(t, router, http.MethodPost, "/blogs", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestBlogHandler_Update(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name      string
		body      string
		wantTitle string
		wantBody  string
	}{
		{name: "title only", body: `{"title":"new"}`, wantTitle: "new", wantBody: "body"},
		{name: "body only", body: `{"body":"new"}`, wantTitle: "title", wantBody: "new"},
		{name: "both", body: `{"title":"t2","body":"b2"}`, wantTitle: "t2", wantBody: "b2"},
		{name: "empty object", body: `{}`, wantTitle: "title", wantBody: "body"},
		{name: "unknown fields", body: `{"author":"me"}`, wantTitle: "title", wantBody: "body"},
		{name: "empty string", body: `{"title":""}`, wantTitle: "", wantBody: "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blog := createBlog(t, router, "title", "body")
			path := fmt.Sprintf("/blogs/%d", blog.ID)

			rr := doRequest(t, router, http.MethodPut, path, tt.body)
			require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

			rr = doRequest(t, router, http.MethodGet, path, "")
			require.Equal(t, http.StatusCreated, rr.Code)

			var got models.Blog
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, blog.ID, got.ID)
			assert.Equal(t, tt.wantTitle, got.Title)
			assert.Equal(t, tt.wantBody, got.Body)
		})
	}
}

func TestBlogHandler_Update_Validation(t *testing.T) {
	router, _ := newTestRouter(t)
	blog := createBlog(t, router, "title", "body")
	path := fmt.Sprintf("/blogs/%d", blog.ID)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "null title", body: `{"title":null}`, wantField: "title"},
		{name: "null body", body: `{"body":null}`, wantField: "body"},
		{name: "body not a string", body: `{"body":false}`, wantField: "body"},
		{name: "not json", body: `{"title":`},
		{name: "trailing garbage", body: `{"title":"x"} trailing`},
		{name: "trailing object", body: `{"title":"x"}{"body":"y"}`},
		{name: "null document", body: `null`},
		{name: "array document", body: `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, http.MethodPut, path, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantField, decodeError(t, rr).Field)
		})
	}

	rr := doRequest(t, router, http.MethodGet, path, "")
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"title":"title","body":"body"}`, blog.ID), rr.Body.String())
}

func TestBlogHandler_InvalidID(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rr := doRequest(t, router, method, "/blogs/abc", `{"title":"x"}`)
			require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			assert.Equal(t, blogIDParam, decodeError(t, rr).Field)
		})
	}
}

func TestBlogHandler_DatabaseUnavailable(t *testing.T) {
	router, db := newTestRouter(t)
	require.NoError(t, db.Close())

	rr := doRequest(t, router, http.MethodGet, "/blogs", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to find blogs", decodeError(t, rr).Details)

	rr = doRequest(t, router, http.MethodPost, "/blogs", `{"title":"t","body":"b"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestBlogHandler_IDsNotReused(t *testing.T) {
	router, _ := newTestRouter(t)

	first := createBlog(t, router, "a", "b")
	rr := doRequest(t, router, http.MethodDelete, fmt.Sprintf("/blogs/%d", first.ID), "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	second := createBlog(t, router, "c", "d")
	assert.Greater(t, second.ID, first.ID)
}

func TestBlogHandler_TypeErrorDetails(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/blogs", `{"title":12,"body":"b"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"details":"expected string, got number","field":"title"}`, rr.Body.String())

	blog := createBlog(t, router, "t", "b")
	rr = doRequest(t, router, http.MethodPut, fmt.Sprintf("/blogs/%d", blog.ID), `{"body":["x"]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"details":"expected string, got array","field":"body"}`, rr.Body.String())
}

func TestBlogHandler_TrailingWhitespaceAccepted(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(t, router, http.MethodPost, "/blogs", "{\"title\":\"a\",\"body\":\"b\"}\n\t ")
	assert.Equal(t, http.StatusCreated, rr.Code)
}
