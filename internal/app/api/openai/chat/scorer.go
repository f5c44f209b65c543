package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = "당신은 전문 면접 평가자입니다. 지원자의 답변을 객관적으로 평가합니다."

var criterionDescriptions = map[string]string{
	"clarity":     "명확성: 답변이 명확하고 이해하기 쉬운가?",
	"relevance":   "관련성: 답변이 질문과 관련이 있는가?",
	"depth":       "깊이: 답변이 충분한 깊이와 통찰력을 보여주는가?",
	"conciseness": "간결성: 답변이 간결하고 핵심을 잘 전달하는가?",
	"confidence":  "자신감: 답변에서 자신감이 느껴지는가?",
}

// ScoreRequest is one (question, answer) pair to score
type ScoreRequest struct {
	CandidateName string
	Competency    string
	Question      string
	Answer        string
}

// ScoreResult is a validated rubric response
type ScoreResult struct {
	Scores   map[string]int
	Feedback string
}

// Scorer rates answers with a chat completion model in JSON mode
type Scorer struct {
	client   *openai.Client
	model    string
	criteria []string
}

// NewScorer creates a Scorer for the given criteria names
func NewScorer(client *openai.Client, model string, criteria []string) *Scorer {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Scorer{client: client, model: model, criteria: criteria}
}

// Score asks the model for the rubric and validates the response. Any
// transport, decoding or range problem is returned as an error.
func (s *Scorer) Score(ctx context.Context, req ScoreRequest) (*ScoreResult, error) {
	request := openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: s.prompt(req)},
		},
	}
	resp, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("createChatCompletion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("scoring response has no choices")
	}
	return ParseScoreResult(resp.Choices[0].Message.Content, s.criteria)
}

func (s *Scorer) prompt(req ScoreRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "다음은 면접 질문과 지원자 %s의 답변입니다.\n", req.CandidateName)
	if req.Competency != "" {
		fmt.Fprintf(&b, "평가 역량: %s\n", req.Competency)
	}
	fmt.Fprintf(&b, "\n질문: %s\n답변: %s\n\n", req.Question, req.Answer)
	b.WriteString("위 답변을 다음 기준에 따라 1-5점 정수로 평가해주세요:\n")
	for i, c := range s.criteria {
		desc := criterionDescriptions[c]
		if desc == "" {
			desc = c
		}
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, desc, c)
	}
	b.WriteString("\nJSON 객체 하나로만 응답해주세요. 키: ")
	b.WriteString(strings.Join(s.criteria, ", "))
	b.WriteString(`, "feedback" (종합적인 피드백 문자열).`)
	return b.String()
}

// ParseScoreResult validates a JSON rubric response strictly: every criterion
// must be present as an integer in [1,5] and feedback must be a string.
func ParseScoreResult(content string, criteria []string) (*ScoreResult, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, fmt.Errorf("scoring response is not a JSON object: %w", err)
	}

	result := &ScoreResult{Scores: make(map[string]int, len(criteria))}
	for _, c := range criteria {
		v, ok := raw[c]
		if !ok {
			return nil, fmt.Errorf("scoring response missing %q", c)
		}
		var n int
		if err := json.Unmarshal(v, &n); err != nil {
			return nil, fmt.Errorf("score %q is not an integer: %s", c, string(v))
		}
		if n < 1 || n > 5 {
			return nil, fmt.Errorf("score %q out of range: %d", c, n)
		}
		result.Scores[c] = n
	}

	if v, ok := raw["feedback"]; ok {
		if err := json.Unmarshal(v, &result.Feedback); err != nil {
			return nil, fmt.Errorf("feedback is not a string: %w", err)
		}
	}
	return result, nil
}
