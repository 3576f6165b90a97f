// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/fresa/staker/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"bad request", BadRequest(errors.New("bad")), http.StatusBadRequest, "bad\n"},
		{"no cause", &httpError{status: http.StatusTeapot}, http.StatusTeapot, ""},
		{"locked", pkgerrors.WithMessage(reverts.New(reverts.Locked, "wait"), "withdraw"), http.StatusConflict, "Locked: wait\n"},
		{"not found", reverts.New(reverts.NotFound, "pool"), http.StatusNotFound, "NotFound: pool\n"},
		{"internal", errors.New("disk"), http.StatusInternalServerError, "disk\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error { return tt.err })(rec, httptest.NewRequest("GET", "/", nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(reverts.InvalidParameter))
	assert.Equal(t, http.StatusForbidden, StatusOf(reverts.Unauthorized))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusOf(reverts.InsufficientStake))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusOf(reverts.InsufficientBalance))
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"b":1}`), &v))

	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSONWithStatus(rec, M{"a": 1}, http.StatusConflict))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, JSONContentType, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"a":1}`, rec.Body.String())
}
