// Package nonverbal scores the behavioral side of an interview.
package nonverbal

import (
	"context"
	"math"
	"math/rand"
	"strings"

	"interview-capture/internal/app/model"
)

// FeedbackThreshold separates the praise line from the improvement line of a criterion
const FeedbackThreshold = 4.0

// Result holds one score per nonverbal criterion and the feedback lines
type Result struct {
	Scores   map[string]float64
	Feedback []string
}

// Text renders the feedback block appended to the evaluation
func (r Result) Text() string {
	return "비언어적 측면 평가:\n" + strings.Join(r.Feedback, "\n")
}

// Analyzer produces nonverbal scores for a session. Implementations backed by video
// analysis plug in here.
type Analyzer interface {
	Analyze(ctx context.Context, session *model.Session) (Result, error)
}

type feedbackPair struct {
	good    string
	improve string
}

var feedbackLines = map[string]feedbackPair{
	"volume":            {"적절한 성량으로 말하고 있습니다.", "성량이 다소 작습니다. 더 큰 목소리로 자신감 있게 말하는 것이 좋습니다."},
	"posture":           {"바른 자세를 잘 유지하고 있습니다.", "자세가 다소 불안정합니다. 더 바른 자세를 유지하는 것이 좋습니다."},
	"attire":            {"면접에 적합한 복장을 잘 갖추고 있습니다.", "복장이 다소 격식에 맞지 않습니다. 면접에 적합한 복장을 갖추는 것이 좋습니다."},
	"facial_expression": {"자연스럽고 적절한 표정을 잘 유지하고 있습니다.", "표정이 다소 경직되어 있습니다. 더 자연스러운 표정을 유지하는 것이 좋습니다."},
	"eye_contact":       {"면접관과의 눈 맞춤을 잘 유지하고 있습니다.", "시선 처리가 다소 불안정합니다. 면접관과의 눈 맞춤을 더 자주 하는 것이 좋습니다."},
	"gestures":          {"적절하고 자연스러운 제스처를 잘 사용하고 있습니다.", "제스처가 다소 부자연스럽습니다. 더 자연스러운 제스처를 사용하는 것이 좋습니다."},
}

// FeedbackFor returns the feedback line for a criterion score
func FeedbackFor(criterion string, score float64) string {
	pair, ok := feedbackLines[criterion]
	if !ok {
		return ""
	}
	if score < FeedbackThreshold {
		return pair.improve
	}
	return pair.good
}

// Placeholder stands in for real video analysis. Scores are drawn uniformly from
// [3,5] at 0.1 precision, seeded by the session id so repeated runs agree.
type Placeholder struct{}

// NewPlaceholder creates the placeholder analyzer
func NewPlaceholder() *Placeholder {
	return &Placeholder{}
}

func (Placeholder) Analyze(_ context.Context, session *model.Session) (Result, error) {
	rng := rand.New(rand.NewSource(session.ID))
	result := Result{Scores: make(map[string]float64, len(model.NonverbalCriteria))}
	for _, c := range model.NonverbalCriteria {
		score := math.Round((3+2*rng.Float64())*10) / 10
		result.Scores[c] = score
		result.Feedback = append(result.Feedback, FeedbackFor(c, score))
	}
	return result, nil
}

// Neutral is the all-3 result used when analysis fails
func Neutral() Result {
	result := Result{Scores: make(map[string]float64, len(model.NonverbalCriteria))}
	for _, c := range model.NonverbalCriteria {
		result.Scores[c] = model.NeutralScore
	}
	result.Feedback = []string{"비언어적 측면 평가 중 오류가 발생했습니다. 기본 점수가 적용됩니다."}
	return result
}
