package httptransport

import (
	"context"
	"net/http"
	"time"

	"ember/internal/platform/middleware"
	"ember/internal/screening"
	dErrors "ember/pkg/domain-errors"
)

// ScreeningService defines the interface for health-screen operations.
type ScreeningService interface {
	Submit(ctx context.Context, reporterID string, testDate time.Time, results map[screening.STIType]screening.Result, notes string) (*screening.SubmitOutcome, error)
	Edit(ctx context.Context, ownerID, recordID string, results map[screening.STIType]screening.Result, notes string) (*screening.HealthScreenRecord, error)
	History(ctx context.Context, ownerID string) ([]*screening.HealthScreenRecord, error)
}

type submitScreenRequest struct {
	TestDate string                                 `json:"test_date"`
	Results  map[screening.STIType]screening.Result `json:"results"`
	Notes    string                                 `json:"notes"`
}

type screenResponse struct {
	ID       string                                 `json:"id"`
	TestDate string                                 `json:"test_date"`
	Results  map[screening.STIType]screening.Result `json:"results"`
	Overall  string                                 `json:"overall_status"`
	Notes    string                                 `json:"notes,omitempty"`
}

func screenToResponse(r *screening.HealthScreenRecord) screenResponse {
	return screenResponse{
		ID:       r.ID,
		TestDate: r.TestDate.Format("2006-01-02"),
		Results:  r.Results,
		Overall:  string(r.Overall),
		Notes:    r.Notes,
	}
}

func (h *Handler) handleSubmitScreen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req submitScreenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	testDate, err := time.Parse("2006-01-02", req.TestDate)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "test_date must be YYYY-MM-DD"))
		return
	}

	outcome, err := h.screening.Submit(ctx, userID, testDate, req.Results, req.Notes)
	if err != nil {
		h.logger.WarnContext(ctx, "screen submission rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}

	resp := map[string]any{"record": screenToResponse(outcome.Record)}
	if outcome.Dispatch != nil {
		resp["dispatch_result"] = outcome.Dispatch
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleListScreens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := h.screening.History(ctx, middleware.GetUserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "list screens failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		writeError(w, err)
		return
	}
	out := make([]screenResponse, 0, len(records))
	for _, record := range records {
		out = append(out, screenToResponse(record))
	}
	writeJSON(w, http.StatusOK, map[string]any{"screens": out})
}

func (h *Handler) handleEditScreen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordID := pathParam(r, "id")

	var req submitScreenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	record, err := h.screening.Edit(ctx, middleware.GetUserID(ctx), recordID, req.Results, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"record": screenToResponse(record)})
}
