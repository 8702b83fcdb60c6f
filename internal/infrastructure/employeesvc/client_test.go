package employeesvc

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrangement/internal/infrastructure/arrangementsvc"
)

type staticToken string

func (s staticToken) AccessToken() string { return string(s) }

func TestGetEmployee(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/v2/employees/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != "42" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "false", req.URL.Query().Get("IncludeResigned"))
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"name":"Kari Nordmann","email":"kari@bekk.no","department":"Teknologi","extra":1}`)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()
	log := zerolog.Nop()
	c := NewClient(srv.URL, staticToken("tok"), time.Second, &log)

	emp, err := c.GetEmployee(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Kari Nordmann", emp.Name)
	assert.Equal(t, "Teknologi", emp.Department)

	_, err = c.GetEmployee(context.Background(), 7)
	var apiErr *arrangementsvc.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
