package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/prep-api/internal/api/shared"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/service"
	"github.com/phrazzld/prep-api/internal/service/auth"
	"github.com/phrazzld/prep-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "expired token", err: auth.ErrExpiredToken, want: http.StatusUnauthorized},
		{name: "wrong token type", err: auth.ErrWrongTokenType, want: http.StatusUnauthorized},
		{name: "invalid credentials", err: service.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{name: "session not found", err: service.ErrSessionNotFound, want: http.StatusNotFound},
		{name: "wrapped store not found", err: fmt.Errorf("load: %w", store.ErrQuestionNotFound), want: http.StatusNotFound},
		{name: "duplicate email", err: store.ErrEmailExists, want: http.StatusConflict},
		{
			name: "domain validation",
			err:  domain.NewValidationError("role", "cannot be empty", domain.ErrEmptyContent),
			want: http.StatusBadRequest,
		},
		{name: "empty body", err: shared.ErrEmptyBody, want: http.StatusBadRequest},
		{name: "invalid entity", err: store.ErrInvalidEntity, want: http.StatusBadRequest},
		{name: "evaluation unavailable", err: service.ErrEvaluationUnavailable, want: http.StatusBadGateway},
		{name: "unknown", err: errors.New("disk full"), want: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: "An unexpected error occurred"},
		{
			name: "validation error names field",
			err:  domain.NewValidationError("topic", "cannot be empty", domain.ErrEmptyContent),
			want: "Invalid topic: cannot be empty",
		},
		{name: "store session not found", err: store.ErrSessionNotFound, want: "Session not found"},
		{name: "google id taken", err: store.ErrGoogleIDExists, want: "Account already linked"},
		{name: "refresh token", err: auth.ErrExpiredRefreshToken, want: "Invalid refresh token"},
		{name: "internal detail hidden", err: errors.New("pq: relation users does not exist"), want: "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	t.Run("uses json field names", func(t *testing.T) {
		t.Parallel()
		err := shared.ValidateRequest(&RegisterRequest{Email: "nope", Password: "correct-horse-battery"})
		require.Error(t, err)
		assert.Equal(t, "Invalid email: invalid email format", SanitizeValidationError(err))
	})

	t.Run("snake cases untagged fields", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "focus_areas", toSnakeCase("FocusAreas"))
	})

	t.Run("non validator error", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
	})
}
