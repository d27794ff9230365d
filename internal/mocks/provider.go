package mocks

import (
	"context"

	"github.com/phrazzld/prep-api/internal/generation"
	"github.com/stretchr/testify/mock"
)

// MockProvider implements generation.Provider. Expectations return
// generation.Outcome values built with Succeeded or Failed.
type MockProvider struct {
	mock.Mock
}

var _ generation.Provider = (*MockProvider)(nil)

func (m *MockProvider) GenerateQuestions(
	ctx context.Context,
	req generation.QuestionRequest,
) generation.Outcome[[]generation.GeneratedQuestion] {
	return m.Called(ctx, req).Get(0).(generation.Outcome[[]generation.GeneratedQuestion])
}

func (m *MockProvider) GenerateExplanation(ctx context.Context, question, answer string) generation.Outcome[string] {
	return m.Called(ctx, question, answer).Get(0).(generation.Outcome[string])
}

func (m *MockProvider) EvaluateAnswer(
	ctx context.Context,
	question, expectedAnswer, userAnswer string,
) generation.Outcome[generation.Evaluation] {
	return m.Called(ctx, question, expectedAnswer, userAnswer).Get(0).(generation.Outcome[generation.Evaluation])
}
