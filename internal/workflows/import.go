package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ImportInput is the input for the import workflow.
type ImportInput struct {
	RequestID string
	Prompt    string
}

// ImportResult reports what the import stored.
type ImportResult struct {
	ApartmentID string
	Rooms       int
}

// ImportPromptWorkflow parses a prompt, creates an apartment for its
// description, and inserts its rooms. If the rooms cannot all be stored, the
// apartment is deleted again (saga compensation).
func ImportPromptWorkflow(ctx workflow.Context, input ImportInput) (ImportResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting import workflow", "requestID", input.RequestID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidLayout, ErrTypeRoomRejected},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Parse
	var parsed ParsedPrompt
	if err := workflow.ExecuteActivity(ctx, "ParsePrompt", input.Prompt).Get(ctx, &parsed); err != nil {
		return ImportResult{}, err
	}

	// Step 2: Create the apartment
	var apartmentID string
	if err := workflow.ExecuteActivity(ctx, "CreateApartment", parsed.Description).Get(ctx, &apartmentID); err != nil {
		return ImportResult{}, err
	}

	// Step 3: Insert rooms
	var stored int
	err := workflow.ExecuteActivity(ctx, "InsertRooms", apartmentID, parsed.Rooms).Get(ctx, &stored)
	if err != nil {
		logger.Warn("room insert failed, compensating", "apartmentID", apartmentID, "error", err)
		// Compensate: delete the apartment and whatever rooms made it in
		if derr := workflow.ExecuteActivity(ctx, "DeleteApartment", apartmentID).Get(ctx, nil); derr != nil {
			logger.Error("compensation failed", "apartmentID", apartmentID, "error", derr)
		}
		return ImportResult{}, err
	}

	logger.Info("Prompt imported", "apartmentID", apartmentID, "rooms", stored)
	return ImportResult{ApartmentID: apartmentID, Rooms: stored}, nil
}
