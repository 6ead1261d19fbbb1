package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
		title  string
	}{
		{fmt.Errorf("%w: export 7", ErrNotFound), http.StatusNotFound, "Not Found"},
		{fmt.Errorf("%w: role is required", ErrValidation), http.StatusBadRequest, "Validation Failed"},
		{fmt.Errorf("%w: export pending", ErrConflict), http.StatusConflict, "Not Ready"},
		{ErrGone, http.StatusGone, "Gone"},
		{ErrUnavailable, http.StatusServiceUnavailable, "Service Unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal Error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		require.Equal(t, tc.status, rec.Code)

		var p ProblemDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, tc.title, p.Title)
		assert.Equal(t, tc.status, p.Status)
		assert.Equal(t, "about:blank", p.Type)
		if tc.status == http.StatusInternalServerError {
			assert.Empty(t, p.Detail)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Role string `json:"role"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"role":"admin"}`))
	require.NoError(t, DecodeJSON(req, &out))
	assert.Equal(t, "admin", out.Role)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(req, &out), ErrEmptyBody)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"role":`))
	assert.Error(t, DecodeJSON(req, &out))

	big := `{"role":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	err := DecodeJSON(req, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}
