package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"interview-capture/internal/app/model"
)

const interviewerPrompt = "당신은 전문 면접관입니다. 지원자의 자기소개서를 분석하여 적절한 면접 질문을 생성합니다."

// Competencies are the 5P areas questions are tagged with
var Competencies = []string{"Passionate", "Professional", "Proactive", "People", "Personal"}

// QuestionGenerator drafts interview questions from a resume
type QuestionGenerator struct {
	client *openai.Client
	model  string
}

// NewQuestionGenerator creates a generator using model, GPT-4o mini by default
func NewQuestionGenerator(client *openai.Client, model string) *QuestionGenerator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &QuestionGenerator{client: client, model: model}
}

// Generate asks for count questions. The response must be a JSON object with a
// "questions" array; extra questions are dropped.
func (g *QuestionGenerator) Generate(ctx context.Context, resume string, count int) ([]model.Question, error) {
	request := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: interviewerPrompt},
			{Role: openai.ChatMessageRoleUser, Content: questionPrompt(resume, count)},
		},
	}
	resp, err := g.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("createChatCompletion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("question response has no choices")
	}
	return ParseQuestions(resp.Choices[0].Message.Content, count)
}

func questionPrompt(resume string, count int) string {
	var b strings.Builder
	b.WriteString("다음은 지원자의 자기소개서입니다:\n\n")
	b.WriteString(resume)
	fmt.Fprintf(&b, "\n\n위 자기소개서를 바탕으로 면접 질문 %d개를 생성해주세요.\n", count)
	b.WriteString("질문은 지원자의 경험, 역량, 성격, 가치관 등을 파악할 수 있어야 하며 간결하고 명확해야 합니다.\n")
	fmt.Fprintf(&b, "각 질문에는 다음 역량 중 하나를 지정해주세요: %s.\n", strings.Join(Competencies, ", "))
	b.WriteString(`JSON 객체 하나로만 응답해주세요: {"questions": [{"index": 0, "content": "질문 내용", "competency": "역량"}]}`)
	return b.String()
}

// ParseQuestions validates a question list response and renumbers it from 0
func ParseQuestions(content string, count int) ([]model.Question, error) {
	var payload struct {
		Questions []model.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &payload); err != nil {
		return nil, fmt.Errorf("question response is not a JSON object: %w", err)
	}

	questions := make([]model.Question, 0, count)
	for _, q := range payload.Questions {
		if strings.TrimSpace(q.Content) == "" {
			continue
		}
		if len(questions) == count {
			break
		}
		q.Index = len(questions)
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("question response has no questions")
	}
	return questions, nil
}

// DefaultQuestions is the fallback list used when generation fails
func DefaultQuestions(count int) []model.Question {
	questions := make([]model.Question, count)
	for i := range questions {
		questions[i] = model.Question{
			Index:      i,
			Content:    fmt.Sprintf("기본 면접 질문 %d입니다. 자신의 경험에 대해 이야기해주세요.", i+1),
			Competency: Competencies[i%len(Competencies)],
		}
	}
	return questions
}
