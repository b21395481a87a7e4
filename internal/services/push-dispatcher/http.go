package push_dispatcher

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type cycleRunner interface {
	Dispatch(ctx context.Context) (*Summary, error)
}

type triggerResponse struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message,omitempty"`
	Processed    int      `json:"processed"`
	Sent         int      `json:"sent"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"errorDetails,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// NewTriggerHandler exposes POST /dispatch: run one cycle now and
// report the summary.
func NewTriggerHandler(r cycleRunner, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		sum, err := r.Dispatch(req.Context())
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			log.Error("on-demand dispatch", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(triggerResponse{
				Success: false,
				Error:   err.Error(),
			})
			return
		}

		msg := "Processing completed"
		if sum.Processed == 0 {
			msg = "No pending notifications"
		}
		_ = json.NewEncoder(w).Encode(triggerResponse{
			Success:      true,
			Message:      msg,
			Processed:    sum.Processed,
			Sent:         sum.Sent,
			Errors:       sum.Failed,
			ErrorDetails: sum.Errors,
		})
	})
}
