package common

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"interview-capture/internal/app/temporal/workflows"
	"interview-capture/internal/config"
)

// NewTemporalClient dials the Temporal frontend with the given configuration
func NewTemporalClient(cfg config.TemporalConfig, logger *zap.Logger) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    NewZapAdapter(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Temporal client: %w", err)
	}
	return c, nil
}

// CloseoutWorkflowID is the workflow id for a session. Starting a second closeout
// while one is running attaches to the running one.
func CloseoutWorkflowID(sessionID int64) string {
	return fmt.Sprintf("session-closeout-%d", sessionID)
}

// CloseoutStarter starts SessionCloseoutWorkflow executions
type CloseoutStarter struct {
	client    client.Client
	taskQueue string
}

// NewCloseoutStarter creates a starter on the given task queue
func NewCloseoutStarter(c client.Client, taskQueue string) *CloseoutStarter {
	return &CloseoutStarter{client: c, taskQueue: taskQueue}
}

// ScheduleCloseout starts the workflow and returns its id
func (s *CloseoutStarter) ScheduleCloseout(ctx context.Context, sessionID int64) (string, error) {
	options := client.StartWorkflowOptions{
		ID:        CloseoutWorkflowID(sessionID),
		TaskQueue: s.taskQueue,
	}
	we, err := s.client.ExecuteWorkflow(ctx, options, workflows.SessionCloseoutWorkflowName,
		workflows.CloseoutRequest{SessionID: sessionID})
	if err != nil {
		return "", fmt.Errorf("failed to start closeout workflow: %w", err)
	}
	return we.GetID(), nil
}

// Wait blocks until the session's latest closeout run finishes and returns its result
func (s *CloseoutStarter) Wait(ctx context.Context, sessionID int64) (workflows.CloseoutResult, error) {
	var result workflows.CloseoutResult
	err := s.client.GetWorkflow(ctx, CloseoutWorkflowID(sessionID), "").Get(ctx, &result)
	return result, err
}
