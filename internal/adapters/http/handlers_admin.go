package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sagra/internal/adapters/http/perf"
	"sagra/internal/application/orchestrators"
	"sagra/internal/domain/outbox"
)

type outboxEntryJSON struct {
	ID              string `json:"id"`
	ActionType      string `json:"action_type"`
	Status          string `json:"status"`
	Attempts        int    `json:"attempts"`
	MaxAttempts     int    `json:"max_attempts"`
	LastAttemptedAt string `json:"last_attempted_at,omitempty"`
	CreatedAt       string `json:"created_at"`
	ExternalID      string `json:"external_id,omitempty"`
	ErrorMessage    string `json:"error_message,omitempty"`
}

func newOutboxEntryJSON(e outbox.Entry) outboxEntryJSON {
	j := outboxEntryJSON{
		ID:           e.ID,
		ActionType:   e.ActionType,
		Status:       e.Status,
		Attempts:     e.Attempts,
		MaxAttempts:  e.MaxAttempts,
		CreatedAt:    e.CreatedAt.UTC().Format(time.RFC3339),
		ExternalID:   e.ExternalID,
		ErrorMessage: e.ErrorMessage,
	}
	if !e.LastAttemptedAt.IsZero() {
		j.LastAttemptedAt = e.LastAttemptedAt.UTC().Format(time.RFC3339)
	}
	return j
}

// handleAdminOutbox manages notification delivery.
// Routes: GET /admin/outbox[?status=pending] (failed entries by default),
// POST /admin/outbox/:id/retry, POST /admin/outbox/:id/abandon
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		limit := 50
		if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
			limit = n
		}

		var entries []outbox.Entry
		var err error
		if r.URL.Query().Get("status") == "pending" {
			entries, err = stores.OutboxStore.ListPending(ctx, limit)
		} else {
			entries, err = stores.OutboxStore.ListFailed(ctx, limit)
		}
		if err != nil {
			internalError(w, err)
			return
		}

		resp := make([]outboxEntryJSON, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, newOutboxEntryJSON(e))
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		// /admin/outbox/:id/:action
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) != 4 || parts[0] != "admin" || parts[1] != "outbox" {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		if outboxProcessor == nil {
			http.Error(w, "outbox processing is disabled", http.StatusServiceUnavailable)
			return
		}
		entryID, action := parts[2], parts[3]

		switch action {
		case "retry":
			if err := outboxProcessor.ProcessSingle(ctx, entryID); err != nil {
				writeRetryError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": outbox.StatusDone})

		case "abandon":
			if err := outboxProcessor.AbandonEntry(ctx, entryID); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": outbox.StatusAbandoned})

		default:
			http.Error(w, "unknown action", http.StatusBadRequest)
		}

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// writeRetryError reports a failed delivery as 502, separate from a missing or terminal entry.
func writeRetryError(w http.ResponseWriter, err error) {
	if errors.Is(err, orchestrators.ErrDeliveryFailed) {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeError(w, err)
}

// handleAdminPerf handles GET /admin/perf?minutes=&top=
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	minutes := 60
	if n, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && n > 0 {
		minutes = n
	}
	top := 10
	if n, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && n > 0 && n <= 100 {
		top = n
	}

	var snap perf.Snapshot
	if perfCollector != nil {
		snap = perfCollector.Snapshot(timeNow().Add(-time.Duration(minutes)*time.Minute), top)
	}
	writeJSON(w, http.StatusOK, snap)
}
