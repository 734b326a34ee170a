package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"edulearn_backend/internal/config"
	"edulearn_backend/internal/util"
	"edulearn_backend/pkg/logger"
	"edulearn_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const maxGeneratedQuestions = 10

// GenAIService turns a (topic, difficulty) pair into an ephemeral quiz via
// an external generative-text API. Every failure along the way degrades to
// a usable quiz instead of surfacing an error, so the endpoint always has
// something to hand back.
type GenAIService struct {
	mu     sync.RWMutex
	cfg    config.AIConfig
	client *http.Client
}

func NewGenAIService(cfg config.AIConfig) *GenAIService {
	return &GenAIService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
	}
}

// UpdateConfig swaps in fresh AI settings, picked up by the config watcher
// so an API key rotation does not need a restart.
func (s *GenAIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.client = &http.Client{Timeout: cfg.Timeout()}
}

// GenerateCustomQuiz never returns an error. If the upstream call or the
// parse fails, it falls back first to canned topic questions, then to a
// minimal hand-built quiz.
func (s *GenAIService) GenerateCustomQuiz(topic, difficulty string) *QuizResponse {
	prompt := buildPrompt(topic, difficulty)

	text, err := s.callAI(prompt)
	if err != nil {
		logger.Log.Warn("AI call failed, using mock response",
			zap.String("topic", topic),
			zap.Error(err))
		monitoring.GenerationFallbacks.WithLabelValues("mock").Inc()
		text = mockAIResponse(prompt)
	}

	quiz, err := parseQuizText(text, topic, difficulty)
	if err == nil {
		return quiz
	}

	logger.Log.Warn("failed to parse AI response, falling back",
		zap.String("topic", topic),
		zap.Error(err))
	monitoring.GenerationFallbacks.WithLabelValues("mock_reparse").Inc()

	quiz, err = parseQuizText(mockAIResponse("Generate questions about "+topic), topic, difficulty)
	if err == nil {
		return quiz
	}

	monitoring.GenerationFallbacks.WithLabelValues("minimal").Inc()
	return minimalQuiz(topic, difficulty)
}

func buildPrompt(topic, difficulty string) string {
	return fmt.Sprintf(
		"Create 3 %s difficulty multiple choice questions about %s. "+
			"Return only this JSON format: "+
			`{"questions": [{"question": "What is...", "options": ["answer1", "answer2", "answer3", "answer4"], "correct": 0}]} `+
			"Make questions specific to %s topic. Each question needs 4 different options with only 1 correct answer.",
		strings.ToLower(difficulty), topic, topic,
	)
}

type aiPart struct {
	Text string `json:"text"`
}

type aiContent struct {
	Parts []aiPart `json:"parts"`
}

type aiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []aiContent        `json:"contents"`
	GenerationConfig aiGenerationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content aiContent `json:"content"`
	} `json:"candidates"`
}

// callAI posts the prompt to the generative endpoint and extracts the text
// of the first candidate. The client's timeout bounds the whole exchange.
func (s *GenAIService) callAI(prompt string) (string, error) {
	s.mu.RLock()
	cfg := s.cfg
	client := s.client
	s.mu.RUnlock()

	req := generateRequest{
		Contents: []aiContent{{Parts: []aiPart{{Text: prompt}}}},
		GenerationConfig: aiGenerationConfig{
			Temperature:     0.7,
			MaxOutputTokens: 2048,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", cfg.BaseURL, cfg.Model, cfg.APIKey)

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", err
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("AI response contained no candidates")
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

type generatedQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"correct"`
}

type generatedQuiz struct {
	Questions []generatedQuestion `json:"questions"`
}

// parseQuizText extracts the questions JSON out of a raw model response
// that may be wrapped in markdown fences or prose, and assembles the quiz.
// The quiz carries id -1: it is ephemeral and never persisted as authored
// content.
func parseQuizText(text, topic, difficulty string) (*QuizResponse, error) {
	jsonStr := strings.TrimSpace(text)

	if idx := strings.Index(jsonStr, "```json"); idx >= 0 {
		start := idx + len("```json")
		if end := strings.Index(jsonStr[start:], "```"); end > 0 {
			jsonStr = strings.TrimSpace(jsonStr[start : start+end])
		}
	} else if idx := strings.Index(jsonStr, "```"); idx >= 0 {
		start := idx + len("```")
		if end := strings.Index(jsonStr[start:], "```"); end > 0 {
			jsonStr = strings.TrimSpace(jsonStr[start : start+end])
		}
	}

	if !strings.HasPrefix(jsonStr, "{") {
		if idx := strings.Index(jsonStr, "{"); idx >= 0 {
			jsonStr = jsonStr[idx:]
		}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, err
	}
	questionsRaw, ok := raw["questions"]
	if !ok {
		return nil, util.ErrInvalidGenerationFormat
	}

	var parsed []generatedQuestion
	if err := json.Unmarshal(questionsRaw, &parsed); err != nil {
		return nil, util.ErrInvalidGenerationFormat
	}

	if len(parsed) > maxGeneratedQuestions {
		parsed = parsed[:maxGeneratedQuestions]
	}

	quiz := &QuizResponse{
		ID:          -1,
		Title:       "Custom Quiz: " + topic,
		Description: "AI-generated " + strings.ToLower(difficulty) + " level quiz on " + topic,
		XPReward:    100,
		TotalMarks:  len(parsed),
	}

	for i, gq := range parsed {
		question := QuestionResponse{
			ID:           int64(i + 1),
			QuestionText: gq.Question,
			Marks:        1,
		}

		if len(gq.Options) > 0 {
			for j, optText := range gq.Options {
				question.Options = append(question.Options, OptionResponse{
					ID:         int64(j + 1),
					OptionText: optText,
					IsCorrect:  j == gq.Correct,
				})
			}
		} else {
			// model omitted options: give placeholders, first one correct
			for j := 0; j < 4; j++ {
				question.Options = append(question.Options, OptionResponse{
					ID:         int64(j + 1),
					OptionText: fmt.Sprintf("Option %c", 'A'+j),
					IsCorrect:  j == 0,
				})
			}
		}

		quiz.Questions = append(quiz.Questions, question)
	}

	if len(quiz.Questions) == 0 {
		return nil, util.ErrNoQuestionsProduced
	}

	return quiz, nil
}

// mockAIResponse picks a canned question set by keyword so the feature
// stays demonstrable when the upstream API is unreachable.
func mockAIResponse(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "javascript"):
		return javascriptQuestions
	case strings.Contains(lower, "java"):
		return javaQuestions
	case strings.Contains(lower, "python"):
		return pythonQuestions
	case strings.Contains(lower, "history"):
		return historyQuestions
	case strings.Contains(lower, "math"):
		return mathQuestions
	}
	return genericQuestions
}

const javascriptQuestions = `{"questions": [
{"question": "What is the correct way to declare a variable in JavaScript?", "options": ["let x = 5;", "variable x = 5;", "declare x = 5;", "x := 5;"], "correct": 0},
{"question": "Which method is used to add an element to the end of an array?", "options": ["append()", "push()", "add()", "insert()"], "correct": 1},
{"question": "What does '===' operator do in JavaScript?", "options": ["Assignment", "Loose equality", "Strict equality", "Not equal"], "correct": 2}
]}`

const javaQuestions = `{"questions": [
{"question": "Which keyword is used to create a class in Java?", "options": ["class", "Class", "create", "new"], "correct": 0},
{"question": "What is the main method signature in Java?", "options": ["main(String args)", "public static void main(String[] args)", "void main()", "static main(String args)"], "correct": 1},
{"question": "Which access modifier makes a member accessible only within the same class?", "options": ["public", "protected", "private", "default"], "correct": 2}
]}`

const pythonQuestions = `{"questions": [
{"question": "How do you create a list in Python?", "options": ["list = [1, 2, 3]", "list = (1, 2, 3)", "list = {1, 2, 3}", "list = <1, 2, 3>"], "correct": 0},
{"question": "Which function is used to get the length of a list?", "options": ["size()", "len()", "length()", "count()"], "correct": 1},
{"question": "What is the correct way to define a function in Python?", "options": ["function myFunc():", "def myFunc():", "create myFunc():", "func myFunc():"], "correct": 1}
]}`

const historyQuestions = `{"questions": [
{"question": "In which year did World War II end?", "options": ["1945", "1944", "1946", "1943"], "correct": 0},
{"question": "Who was the first President of the United States?", "options": ["Thomas Jefferson", "George Washington", "John Adams", "Benjamin Franklin"], "correct": 1},
{"question": "The Renaissance period began in which country?", "options": ["France", "Germany", "Italy", "England"], "correct": 2}
]}`

const mathQuestions = `{"questions": [
{"question": "What is 15 + 27?", "options": ["42", "41", "43", "40"], "correct": 0},
{"question": "What is the square root of 64?", "options": ["6", "8", "10", "7"], "correct": 1},
{"question": "What is 12 x 9?", "options": ["106", "107", "108", "109"], "correct": 2}
]}`

const genericQuestions = `{"questions": [
{"question": "What is a key concept in learning?", "options": ["Practice and understanding", "Memorization only", "Avoiding challenges", "Skipping basics"], "correct": 0},
{"question": "Which approach helps in problem solving?", "options": ["Giving up quickly", "Breaking down problems", "Avoiding difficult tasks", "Working without planning"], "correct": 1},
{"question": "What is important for success?", "options": ["Luck only", "Natural talent only", "Consistent effort", "Avoiding mistakes"], "correct": 2}
]}`

// minimalQuiz is the last line of defense when even the canned responses
// cannot be parsed.
func minimalQuiz(topic, difficulty string) *QuizResponse {
	return &QuizResponse{
		ID:          -1,
		Title:       "Custom Quiz: " + topic,
		Description: "AI-generated " + strings.ToLower(difficulty) + " level quiz on " + topic,
		XPReward:    100,
		TotalMarks:  3,
		Questions: []QuestionResponse{
			{
				ID:           1,
				QuestionText: "What is a key concept in " + topic + "?",
				Marks:        1,
				Options: []OptionResponse{
					{ID: 1, OptionText: "Fundamental principles", IsCorrect: true},
					{ID: 2, OptionText: "Random facts", IsCorrect: false},
					{ID: 3, OptionText: "Unrelated topics", IsCorrect: false},
					{ID: 4, OptionText: "Complex theories", IsCorrect: false},
				},
			},
		},
	}
}
