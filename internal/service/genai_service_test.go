package service

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"edulearn_backend/internal/config"
	"edulearn_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuizTextPlainJSON(t *testing.T) {
	text := `{"questions": [{"question": "What is Go?", "options": ["A language", "A game", "A fruit", "A car"], "correct": 0}]}`

	quiz, err := parseQuizText(text, "Go", "EASY")
	require.NoError(t, err)

	assert.EqualValues(t, -1, quiz.ID)
	assert.Equal(t, "Custom Quiz: Go", quiz.Title)
	assert.Equal(t, "AI-generated easy level quiz on Go", quiz.Description)
	assert.Equal(t, 100, quiz.XPReward)
	assert.Equal(t, 1, quiz.TotalMarks)
	require.Len(t, quiz.Questions, 1)
	assert.Equal(t, "What is Go?", quiz.Questions[0].QuestionText)
	assert.True(t, quiz.Questions[0].Options[0].IsCorrect)
	assert.False(t, quiz.Questions[0].Options[1].IsCorrect)
}

func TestParseQuizTextStripsJSONFence(t *testing.T) {
	text := "Here you go:\n```json\n{\"questions\": [{\"question\": \"Q\", \"options\": [\"a\", \"b\"], \"correct\": 1}]}\n```\nEnjoy!"

	quiz, err := parseQuizText(text, "topic", "HARD")
	require.NoError(t, err)

	require.Len(t, quiz.Questions, 1)
	assert.True(t, quiz.Questions[0].Options[1].IsCorrect)
}

func TestParseQuizTextStripsBareFence(t *testing.T) {
	text := "```\n{\"questions\": [{\"question\": \"Q\", \"options\": [\"a\", \"b\"], \"correct\": 0}]}\n```"

	quiz, err := parseQuizText(text, "topic", "MEDIUM")
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 1)
}

func TestParseQuizTextFindsEmbeddedObject(t *testing.T) {
	text := `Sure! Here are your questions: {"questions": [{"question": "Q", "options": ["a", "b"], "correct": 0}]}`

	quiz, err := parseQuizText(text, "topic", "EASY")
	require.NoError(t, err)
	require.Len(t, quiz.Questions, 1)
}

func TestParseQuizTextRequiresQuestionsArray(t *testing.T) {
	_, err := parseQuizText(`{"items": []}`, "topic", "EASY")
	assert.ErrorIs(t, err, util.ErrInvalidGenerationFormat)
}

func TestParseQuizTextRejectsEmptyQuestions(t *testing.T) {
	_, err := parseQuizText(`{"questions": []}`, "topic", "EASY")
	assert.ErrorIs(t, err, util.ErrNoQuestionsProduced)
}

func TestParseQuizTextRejectsGarbage(t *testing.T) {
	_, err := parseQuizText("no json here at all", "topic", "EASY")
	assert.Error(t, err)
}

func TestParseQuizTextPlaceholderOptions(t *testing.T) {
	text := `{"questions": [{"question": "Q without options", "correct": 0}]}`

	quiz, err := parseQuizText(text, "topic", "EASY")
	require.NoError(t, err)

	require.Len(t, quiz.Questions[0].Options, 4)
	assert.Equal(t, "Option A", quiz.Questions[0].Options[0].OptionText)
	assert.Equal(t, "Option D", quiz.Questions[0].Options[3].OptionText)
	assert.True(t, quiz.Questions[0].Options[0].IsCorrect)
	for _, opt := range quiz.Questions[0].Options[1:] {
		assert.False(t, opt.IsCorrect)
	}
}

func TestParseQuizTextCapsQuestionCount(t *testing.T) {
	text := `{"questions": [`
	for i := 0; i < 12; i++ {
		if i > 0 {
			text += ","
		}
		text += `{"question": "Q", "options": ["a", "b"], "correct": 0}`
	}
	text += `]}`

	quiz, err := parseQuizText(text, "topic", "EASY")
	require.NoError(t, err)

	assert.Len(t, quiz.Questions, 10)
	assert.Equal(t, 10, quiz.TotalMarks)
	assert.EqualValues(t, 10, quiz.Questions[9].ID)
}

func unreachableAIConfig() config.AIConfig {
	return config.AIConfig{
		BaseURL:        "http://127.0.0.1:1",
		APIKey:         "test",
		Model:          "gemini-pro",
		TimeoutSeconds: 1,
	}
}

func TestGenerateCustomQuizFallsBackToTopicMocks(t *testing.T) {
	svc := NewGenAIService(unreachableAIConfig())

	quiz := svc.GenerateCustomQuiz("JavaScript", "MEDIUM")
	require.NotNil(t, quiz)

	assert.Equal(t, "Custom Quiz: JavaScript", quiz.Title)
	require.Len(t, quiz.Questions, 3)
	assert.Contains(t, quiz.Questions[0].QuestionText, "JavaScript")

	for _, q := range quiz.Questions {
		correct := 0
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		assert.Equal(t, 1, correct)
		assert.Len(t, q.Options, 4)
	}
}

func TestGenerateCustomQuizGenericFallback(t *testing.T) {
	svc := NewGenAIService(unreachableAIConfig())

	quiz := svc.GenerateCustomQuiz("Quantum Gardening", "HARD")
	require.NotNil(t, quiz)

	assert.Equal(t, "Custom Quiz: Quantum Gardening", quiz.Title)
	assert.Equal(t, "AI-generated hard level quiz on Quantum Gardening", quiz.Description)
	require.Len(t, quiz.Questions, 3)
	assert.Equal(t, "What is a key concept in learning?", quiz.Questions[0].QuestionText)
}

func TestGenerateCustomQuizUsesUpstreamResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-pro:generateContent")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "Here is your quiz: {\"questions\": [{\"question\": \"Upstream?\", \"options\": [\"yes\", \"no\"], \"correct\": 0}]}"}]}}]}`))
	}))
	defer server.Close()

	svc := NewGenAIService(config.AIConfig{
		BaseURL:        server.URL,
		APIKey:         "test",
		Model:          "gemini-pro",
		TimeoutSeconds: 2,
	})

	quiz := svc.GenerateCustomQuiz("networking", "EASY")
	require.NotNil(t, quiz)
	require.Len(t, quiz.Questions, 1)
	assert.Equal(t, "Upstream?", quiz.Questions[0].QuestionText)
}

func TestGenerateCustomQuizSurvivesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewGenAIService(config.AIConfig{
		BaseURL:        server.URL,
		APIKey:         "test",
		Model:          "gemini-pro",
		TimeoutSeconds: 2,
	})

	quiz := svc.GenerateCustomQuiz("python", "EASY")
	require.NotNil(t, quiz)
	require.Len(t, quiz.Questions, 3)
	assert.Contains(t, quiz.Questions[0].QuestionText, "Python")
}

func TestUpdateConfigSwapsEndpoint(t *testing.T) {
	svc := NewGenAIService(unreachableAIConfig())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "{\"questions\": [{\"question\": \"Fresh?\", \"options\": [\"a\", \"b\"], \"correct\": 0}]}"}]}}]}`))
	}))
	defer server.Close()

	svc.UpdateConfig(config.AIConfig{
		BaseURL:        server.URL,
		APIKey:         "rotated",
		Model:          "gemini-pro",
		TimeoutSeconds: 2,
	})

	quiz := svc.GenerateCustomQuiz("anything", "EASY")
	require.Len(t, quiz.Questions, 1)
	assert.Equal(t, "Fresh?", quiz.Questions[0].QuestionText)
}
