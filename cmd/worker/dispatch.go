package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	natsadapter "github.com/samirrijal/floorplan/internal/adapters/nats"
	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/layout"
	"github.com/samirrijal/floorplan/internal/pkg/metrics"
	"github.com/samirrijal/floorplan/internal/workflows"
)

// workflowStarter is the part of client.Client the dispatcher needs.
type workflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// dispatcher turns queued import requests into ImportPromptWorkflow runs.
type dispatcher struct {
	temporal  workflowStarter
	taskQueue string
}

func workflowID(requestID string) string { return "import-" + requestID }

// handle starts one workflow per request ID. Prompts that do not parse are
// rejected permanently so they are not redelivered.
func (d *dispatcher) handle(ctx context.Context, req *domain.ImportRequest) error {
	start := time.Now()
	defer func() {
		metrics.ImportDuration.WithLabelValues("worker").Observe(time.Since(start).Seconds())
	}()

	if req.RequestID == "" {
		metrics.ImportsProcessed.WithLabelValues("worker", "invalid").Inc()
		return fmt.Errorf("%w: empty request id", natsadapter.ErrPermanent)
	}
	if _, _, err := layout.ParsePrompt(req.Prompt); err != nil {
		metrics.ImportsProcessed.WithLabelValues("worker", "invalid").Inc()
		slog.Warn("rejecting import request", "request_id", req.RequestID, "error", err)
		return fmt.Errorf("%w: %v", natsadapter.ErrPermanent, err)
	}

	run, err := d.temporal.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                    workflowID(req.RequestID),
		TaskQueue:             d.taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}, workflows.ImportPromptWorkflow, workflows.ImportInput{
		RequestID: req.RequestID,
		Prompt:    req.Prompt,
	})
	if err != nil {
		var already *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &already) {
			metrics.ImportsProcessed.WithLabelValues("worker", "duplicate").Inc()
			slog.Info("import already started", "request_id", req.RequestID)
			return nil
		}
		metrics.ImportsProcessed.WithLabelValues("worker", "error").Inc()
		return fmt.Errorf("start workflow: %w", err)
	}

	metrics.ImportsProcessed.WithLabelValues("worker", "started").Inc()
	slog.Info("import workflow started", "request_id", req.RequestID, "workflow_id", run.GetID(), "run_id", run.GetRunID())
	return nil
}
