package services

import (
	"context"
	"math"

	"github.com/samber/lo"

	"interview-capture/internal/api/v1/dto"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
)

const recentSessions = 5

// AdminStore is the part of the record store the dashboard reads
type AdminStore interface {
	CountSessions(ctx context.Context) (map[model.SessionStatus]int, error)
	ListSessions(ctx context.Context, opts repository.ListOptions) ([]model.Session, error)
	ListEvaluations(ctx context.Context) ([]model.Evaluation, error)
}

// AdminServiceImpl implements AdminService
type AdminServiceImpl struct {
	store AdminStore
}

// NewAdminService creates a new admin service
func NewAdminService(store AdminStore) AdminService {
	return &AdminServiceImpl{store: store}
}

// Dashboard counts sessions per status, averages evaluation totals and lists the newest sessions
func (s *AdminServiceImpl) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	counts, err := s.store.CountSessions(ctx)
	if err != nil {
		return nil, err
	}
	evaluations, err := s.store.ListEvaluations(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.ListSessions(ctx, repository.ListOptions{Limit: recentSessions})
	if err != nil {
		return nil, err
	}

	sessions := map[string]int{"total": 0}
	for _, status := range []model.SessionStatus{
		model.StatusScheduled, model.StatusInProgress, model.StatusCompleted,
		model.StatusEvaluated, model.StatusCancelled,
	} {
		sessions[string(status)] = counts[status]
		sessions["total"] += counts[status]
	}

	var avg float64
	if len(evaluations) > 0 {
		total := lo.SumBy(evaluations, func(e model.Evaluation) float64 { return e.TotalScore })
		avg = math.Round(total/float64(len(evaluations))*100) / 100
	}

	return &dto.DashboardResponse{
		Sessions:     sessions,
		Evaluations:  len(evaluations),
		AverageScore: avg,
		RecentSessions: lo.Map(recent, func(item model.Session, _ int) *dto.SessionResponse {
			return dto.NewSessionResponse(&item)
		}),
	}, nil
}
