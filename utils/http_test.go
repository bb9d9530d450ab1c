package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "test"}

		err := WriteJSON(w, http.StatusOK, data)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response map[string]string
		err = json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)
		assert.Equal(t, "test", response["message"])
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("raw array", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, []interface{}{"", 0.5})
		require.NoError(t, err)
		assert.JSONEq(t, `["", 0.5]`, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"result": "success"}

	err := WriteOK(w, data)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.Code)

	var response SuccessResponse
	err = json.NewDecoder(w.Body).Decode(&response)
	require.NoError(t, err)

	dataMap := response.Data.(map[string]interface{})
	assert.Equal(t, "success", dataMap["result"])
}

func TestErrorWriters(t *testing.T) {
	details := map[string]interface{}{"index": float64(2)}

	tests := []struct {
		name            string
		write           func(w http.ResponseWriter) error
		expectedStatus  int
		expectedError   string
		expectedMessage string
		expectDetails   bool
	}{
		{
			name:            "bad request",
			write:           func(w http.ResponseWriter) error { return WriteBadRequest(w, "Invalid input", details) },
			expectedStatus:  http.StatusBadRequest,
			expectedError:   "bad_request",
			expectedMessage: "Invalid input",
			expectDetails:   true,
		},
		{
			name:            "not found default message",
			write:           func(w http.ResponseWriter) error { return WriteNotFound(w, "") },
			expectedStatus:  http.StatusNotFound,
			expectedError:   "not_found",
			expectedMessage: "Resource not found",
		},
		{
			name:            "request too large",
			write:           func(w http.ResponseWriter) error { return WriteRequestTooLarge(w, "") },
			expectedStatus:  http.StatusRequestEntityTooLarge,
			expectedError:   "request_too_large",
			expectedMessage: "Request body too large",
		},
		{
			name:            "internal server error",
			write:           func(w http.ResponseWriter) error { return WriteInternalServerError(w, "Database error") },
			expectedStatus:  http.StatusInternalServerError,
			expectedError:   "internal_error",
			expectedMessage: "Database error",
		},
		{
			name:            "bad gateway",
			write:           func(w http.ResponseWriter) error { return WriteBadGateway(w, "encoder down", details) },
			expectedStatus:  http.StatusBadGateway,
			expectedError:   "bad_gateway",
			expectedMessage: "encoder down",
			expectDetails:   true,
		},
		{
			name:            "service unavailable default message",
			write:           func(w http.ResponseWriter) error { return WriteServiceUnavailable(w, "") },
			expectedStatus:  http.StatusServiceUnavailable,
			expectedError:   "service_unavailable",
			expectedMessage: "Service unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response ErrorResponse
			err := json.NewDecoder(w.Body).Decode(&response)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedError, response.Error)
			assert.Equal(t, tt.expectedMessage, response.Message)
			if tt.expectDetails {
				assert.Equal(t, details, response.Details)
			} else {
				assert.Nil(t, response.Details)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		expectedError string
	}{
		{"bad request", http.StatusBadRequest, "bad_request"},
		{"not found", http.StatusNotFound, "not_found"},
		{"method not allowed", http.StatusMethodNotAllowed, "method_not_allowed"},
		{"too large", http.StatusRequestEntityTooLarge, "request_too_large"},
		{"bad gateway", http.StatusBadGateway, "bad_gateway"},
		{"service unavailable", http.StatusServiceUnavailable, "service_unavailable"},
		{"internal error", http.StatusInternalServerError, "internal_error"},
		{"unknown status", http.StatusTeapot, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			err := WriteError(w, tt.status, "Test message", nil)
			require.NoError(t, err)

			assert.Equal(t, tt.status, w.Code)

			var response ErrorResponse
			err = json.NewDecoder(w.Body).Decode(&response)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedError, response.Error)
			assert.Equal(t, "Test message", response.Message)
		})
	}
}
