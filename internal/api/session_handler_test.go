package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/prep-api/internal/domain"
	"github.com/phrazzld/prep-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testSession(userID uuid.UUID) *domain.Session {
	sessionID := uuid.New()
	return &domain.Session{
		ID:         sessionID,
		UserID:     userID,
		Role:       "Backend Engineer",
		Experience: "5 years",
		FocusAreas: []string{"Go", "Databases"},
		Questions: []domain.Question{{
			ID:         uuid.New(),
			SessionID:  sessionID,
			Question:   "What is a goroutine?",
			Answer:     "A lightweight thread managed by the Go runtime.",
			Topic:      "Go",
			Difficulty: domain.DifficultyEasy,
		}},
	}
}

func TestCreateSession(t *testing.T) {
	t.Parallel()

	t.Run("creates session", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		userID := uuid.New()
		session := testSession(userID)
		a.sessions.On("Create", mock.Anything, service.CreateSessionInput{
			UserID:     userID,
			Role:       "Backend Engineer",
			Experience: "5 years",
			FocusAreas: []string{"Go", "Databases"},
		}).Return(&service.SessionResult{Session: session, GeneratedWithFallback: true}, nil).Once()

		rec := a.do(t, http.MethodPost, "/api/sessions", userID, CreateSessionRequest{
			Role:       "Backend Engineer",
			Experience: "5 years",
			FocusAreas: []string{"Go", "Databases"},
		})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		resp := decodeBody[SessionResponse](t, rec)
		require.NotNil(t, resp.Session)
		assert.Equal(t, session.ID, resp.Session.ID)
		assert.Len(t, resp.Session.Questions, 1)
		assert.True(t, resp.GeneratedWithFallback)
	})

	t.Run("requires role", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		rec := a.do(t, http.MethodPost, "/api/sessions", uuid.New(), CreateSessionRequest{Experience: "junior"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid role: required field", decodeBody[map[string]string](t, rec)["error"])
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		rec := a.do(t, http.MethodPost, "/api/sessions", uuid.New(), `{"role":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid request format", decodeBody[map[string]string](t, rec)["error"])
	})

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		rec := a.do(t, http.MethodPost, "/api/sessions", uuid.Nil, CreateSessionRequest{Role: "SRE", Experience: "senior"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("store failure uses fallback message", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		a.sessions.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Once()

		rec := a.do(t, http.MethodPost, "/api/sessions", uuid.New(), CreateSessionRequest{Role: "SRE", Experience: "senior"})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to create session", decodeBody[map[string]string](t, rec)["error"])
	})
}

func TestListSessions(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t)
	userID := uuid.New()
	sessions := []domain.Session{*testSession(userID), *testSession(userID)}
	a.sessions.On("List", mock.Anything, userID).Return(sessions, nil).Once()

	rec := a.do(t, http.MethodGet, "/api/sessions", userID, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[SessionListResponse](t, rec)
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Sessions, 2)
}

func TestGetSession(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		userID := uuid.New()
		session := testSession(userID)
		a.sessions.On("Get", mock.Anything, userID, session.ID).Return(session, nil).Once()

		rec := a.do(t, http.MethodGet, "/api/sessions/"+session.ID.String(), userID, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[SessionResponse](t, rec)
		assert.Equal(t, session.ID, resp.Session.ID)
		assert.False(t, resp.GeneratedWithFallback)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		userID, sessionID := uuid.New(), uuid.New()
		a.sessions.On("Get", mock.Anything, userID, sessionID).Return(nil, service.ErrSessionNotFound).Once()

		rec := a.do(t, http.MethodGet, "/api/sessions/"+sessionID.String(), userID, nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Session not found", decodeBody[map[string]string](t, rec)["error"])
	})

	t.Run("invalid id", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		rec := a.do(t, http.MethodGet, "/api/sessions/not-a-uuid", uuid.New(), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid id: has invalid format", decodeBody[map[string]string](t, rec)["error"])
	})
}

func TestDeleteSession(t *testing.T) {
	t.Parallel()

	t.Run("deletes", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		userID, sessionID := uuid.New(), uuid.New()
		a.sessions.On("Delete", mock.Anything, userID, sessionID).Return(nil).Once()

		rec := a.do(t, http.MethodDelete, "/api/sessions/"+sessionID.String(), userID, nil)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("other user's session", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		userID, sessionID := uuid.New(), uuid.New()
		a.sessions.On("Delete", mock.Anything, userID, sessionID).Return(service.ErrSessionNotFound).Once()

		rec := a.do(t, http.MethodDelete, "/api/sessions/"+sessionID.String(), userID, nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAddQuestions(t *testing.T) {
	t.Parallel()

	t.Run("empty body generates", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		userID := uuid.New()
		session := testSession(userID)
		a.sessions.On("AddQuestions", mock.Anything, userID, session.ID, []service.QuestionInput{}).
			Return(&service.SessionResult{Session: session}, nil).Once()

		rec := a.do(t, http.MethodPost, "/api/sessions/"+session.ID.String()+"/questions", userID, nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, session.ID, decodeBody[SessionResponse](t, rec).Session.ID)
	})

	t.Run("explicit questions", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		userID := uuid.New()
		session := testSession(userID)
		a.sessions.On("AddQuestions", mock.Anything, userID, session.ID, []service.QuestionInput{{
			Question:   "Explain MVCC.",
			Answer:     "Readers see a snapshot while writers create new row versions.",
			Topic:      "Databases",
			Difficulty: domain.DifficultyHard,
		}}).Return(&service.SessionResult{Session: session}, nil).Once()

		rec := a.do(t, http.MethodPost, "/api/sessions/"+session.ID.String()+"/questions", userID, AddQuestionsRequest{
			Questions: []QuestionRequest{{
				Question:   "Explain MVCC.",
				Answer:     "Readers see a snapshot while writers create new row versions.",
				Topic:      "Databases",
				Difficulty: domain.DifficultyHard,
			}},
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("invalid difficulty", func(t *testing.T) {
		t.Parallel()
		a := newTestAPI(t)
		rec := a.do(t, http.MethodPost, "/api/sessions/"+uuid.NewString()+"/questions", uuid.New(), AddQuestionsRequest{
			Questions: []QuestionRequest{{Question: "Q", Answer: "A", Difficulty: "Impossible"}},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid difficulty: invalid value", decodeBody[map[string]string](t, rec)["error"])
	})
}
