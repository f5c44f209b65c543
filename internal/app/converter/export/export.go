// Package export renders evaluations into xlsx workbooks.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/tealeg/xlsx"

	"interview-capture/internal/app/model"
	"interview-capture/internal/app/storage/media"
)

// MaxFeedbackLength caps the feedback cell of the bulk export
const MaxFeedbackLength = 1000

const timeLayout = "2006-01-02 15:04"

// Report is everything rendered for one evaluation
type Report struct {
	Session    model.Session
	Evaluation model.Evaluation
	Criteria   []model.CriteriaScore
}

// Renderer writes a single evaluation report to path
type Renderer interface {
	Render(path string, r Report) error
	Ext() string
}

// XLSXRenderer renders a report as a one-sheet workbook
type XLSXRenderer struct{}

func (XLSXRenderer) Ext() string { return "xlsx" }

var categoryLabels = map[string]string{
	model.CategoryVerbal:     "언어적 측면",
	model.CategoryNonverbal:  "비언어적 측면",
	model.CategoryCompetency: "역량",
}

func (XLSXRenderer) Render(path string, r Report) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("평가 리포트")
	if err != nil {
		return err
	}

	addRow(sheet, "면접 평가 리포트")
	addRow(sheet)
	addRow(sheet, "지원자", r.Session.CandidateName)
	addRow(sheet, "면접 일시", formatTime(r.Session.StartTime))
	addRow(sheet, "총점", fmt.Sprintf("%.1f/100", r.Evaluation.TotalScore))
	addRow(sheet)

	addRow(sheet, "평가 영역", "점수 (5점 만점)")
	addRow(sheet, categoryLabels[model.CategoryVerbal], fmt.Sprintf("%.1f", r.Evaluation.VerbalScore/20))
	addCriteria(sheet, r.Criteria, model.CategoryVerbal)
	addRow(sheet, categoryLabels[model.CategoryNonverbal], fmt.Sprintf("%.1f", r.Evaluation.NonverbalScore/20))
	addCriteria(sheet, r.Criteria, model.CategoryNonverbal)
	if hasCategory(r.Criteria, model.CategoryCompetency) {
		addRow(sheet, categoryLabels[model.CategoryCompetency], "")
		addCriteria(sheet, r.Criteria, model.CategoryCompetency)
	}
	addRow(sheet)

	addRow(sheet, "종합 피드백")
	for _, line := range strings.Split(r.Evaluation.Feedback, "\n") {
		if strings.TrimSpace(line) != "" {
			addRow(sheet, line)
		}
	}

	return save(file, path)
}

// ExportHeaders are the columns of the bulk export
var ExportHeaders = []string{
	"면접 ID", "지원자 이름", "면접 일시", "총점",
	"언어적 점수", "비언어적 점수",
	"명확성", "관련성", "깊이", "간결성", "자신감",
	"성량", "자세", "복장", "표정", "시선처리", "제스처",
	"피드백",
}

// Row is one evaluated session in the bulk export
type Row struct {
	Session    model.Session
	Evaluation model.Evaluation
}

// WriteEvaluations writes every row into a single "면접 평가 결과" sheet
func WriteEvaluations(path string, rows []Row) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("면접 평가 결과")
	if err != nil {
		return err
	}
	addRow(sheet, ExportHeaders...)

	for _, r := range rows {
		verbal := r.Evaluation.DetailedScores[model.CategoryVerbal]
		nonverbal := r.Evaluation.DetailedScores[model.CategoryNonverbal]

		cells := []string{
			fmt.Sprint(r.Session.ID),
			r.Session.CandidateName,
			formatTime(r.Session.StartTime),
			fmt.Sprintf("%.1f", r.Evaluation.TotalScore),
			fmt.Sprintf("%.1f", r.Evaluation.VerbalScore),
			fmt.Sprintf("%.1f", r.Evaluation.NonverbalScore),
		}
		for _, c := range model.VerbalCriteria {
			cells = append(cells, fmt.Sprintf("%.1f", verbal[c]))
		}
		for _, c := range model.NonverbalCriteria {
			cells = append(cells, fmt.Sprintf("%.1f", nonverbal[c]))
		}
		cells = append(cells, truncate(r.Evaluation.Feedback, MaxFeedbackLength))
		addRow(sheet, cells...)
	}

	return save(file, path)
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}

func addCriteria(sheet *xlsx.Sheet, criteria []model.CriteriaScore, category string) {
	for _, c := range criteria {
		if c.Category == category {
			addRow(sheet, "  - "+c.Criterion, fmt.Sprintf("%.1f", c.Score))
		}
	}
}

func hasCategory(criteria []model.CriteriaScore, category string) bool {
	for _, c := range criteria {
		if c.Category == category {
			return true
		}
	}
	return false
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

func save(file *xlsx.File, path string) error {
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return err
	}
	return media.WriteFile(path, buf.Bytes())
}
