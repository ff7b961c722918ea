// ABOUTME: Streaming sources collection endpoint over Server-Sent Events
// ABOUTME: Raw chi handler; huma's response model cannot express this stream

package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"blogforge-app-api/api/dto/requests"
	"blogforge-app-api/api/middleware"
	"blogforge-app-api/core/domain"
	coreerrors "blogforge-app-api/core/errors"
	"blogforge-app-api/core/interfaces"
	"blogforge-app-api/core/sources"
	"blogforge-app-api/core/validation"
)

// maxStreamBodyBytes bounds the POST body; outlines are small.
const maxStreamBodyBytes = 1 << 20

// StreamHandler serves the SSE collection endpoint.
type StreamHandler struct {
	gate      *validation.Gate
	collector *sources.Collector
	committer *sources.Committer
	logger    interfaces.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(gate *validation.Gate, collector *sources.Collector, committer *sources.Committer, logger interfaces.Logger) *StreamHandler {
	return &StreamHandler{
		gate:      gate,
		collector: collector,
		committer: committer,
		logger:    logger,
	}
}

// RegisterRoutes mounts the streaming route on the chi router directly.
func (h *StreamHandler) RegisterRoutes(router chi.Router) {
	router.Post("/projects/{project_id}/sources/{document_id}", h.CollectSources)
}

// sseSink writes events to the response in SSE framing, flushing after
// every write so events reach the client immediately.
type sseSink struct {
	w http.ResponseWriter
	f http.Flusher
}

// Send implements sources.EventSink.
func (s *sseSink) Send(ev domain.StreamEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// sendDone writes the stream-end sentinel.
func (s *sseSink) sendDone() {
	fmt.Fprint(s.w, "data: [DONE]\n\n")
	s.f.Flush()
}

// CollectSources handles POST /projects/{project_id}/sources/{document_id}.
//
// The stream carries every outcome, including validation failures: once the
// SSE headers are written there is no other channel left. Client disconnect
// is surfaced through the request context and stops production; nothing is
// persisted for a disconnected run.
func (h *StreamHandler) CollectSources(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, `{"error":"Streaming unsupported"}`, http.StatusInternalServerError)
		return
	}

	projectID := chi.URLParam(r, "project_id")
	blogID := chi.URLParam(r, "document_id")

	var body requests.CollectSourcesRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxStreamBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"Invalid JSON body"}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sink := &sseSink{w: w, f: flusher}
	ctx := r.Context()

	// Initial event confirms the stream is live before validation runs.
	if err := sink.Send(domain.NewStreamEvent(domain.StatusProcessing, "Starting sources collection...")); err != nil {
		return
	}

	result, err := h.gate.Validate(ctx, validation.Request{
		UserID:     caller.UserID,
		ProjectID:  projectID,
		BlogID:     blogID,
		ServiceKey: "sources_generation",
	})
	if err != nil {
		h.logger.Warn("Collection request rejected", map[string]interface{}{
			"blog_id":    blogID,
			"project_id": projectID,
			"user_id":    caller.UserID,
			"error":      err.Error(),
		})
		if sink.Send(validationErrorEvent(err)) == nil {
			sink.sendDone()
		}
		return
	}

	outline, err := domain.NormalizeOutline(body.Outline)
	if err != nil {
		ev := domain.NewStreamEvent(domain.StatusError, "Invalid outline: "+err.Error())
		if sink.Send(ev) == nil {
			sink.sendDone()
		}
		return
	}

	h.logger.Info("Starting collection run", map[string]interface{}{
		"blog_id":         blogID,
		"project_id":      projectID,
		"user_id":         caller.UserID,
		"primary_keyword": result.PrimaryKeyword,
		"sections":        outline.SectionCount(),
	})

	aggregator := sources.NewAggregator()
	events := h.collector.Collect(ctx, sources.CollectRequest{
		Outline:        outline,
		PrimaryKeyword: result.PrimaryKeyword,
		Country:        result.Country,
		BlogTitle:      result.BlogTitle,
	})

	outcome := sources.NewMultiplexer(aggregator, h.logger).Run(ctx, events, sink)

	if outcome.Disconnected {
		h.logger.Info("Run abandoned, client disconnected", map[string]interface{}{
			"blog_id":            blogID,
			"subsections_so_far": aggregator.Count(),
		})
		return
	}

	if outcome.Failed {
		sink.sendDone()
		return
	}

	if !outcome.Completed {
		// Collector closed the channel without a terminal event.
		ev := domain.NewStreamEvent(domain.StatusStreamError, "Streaming failed: collection ended unexpectedly")
		if sink.Send(ev) == nil {
			sink.sendDone()
		}
		return
	}

	h.finishRun(r, sink, blogID, outline, body.Outline, result, aggregator)
}

// finishRun persists the completed run and reports the final status event.
func (h *StreamHandler) finishRun(r *http.Request, sink *sseSink, blogID string, outline *domain.Outline, rawOutline json.RawMessage, result *validation.Result, aggregator *sources.Aggregator) {
	var snapshot interface{}
	if len(rawOutline) > 0 {
		// Persist the caller's payload verbatim alongside the run
		_ = json.Unmarshal(rawOutline, &snapshot)
	}

	err := h.committer.Commit(r.Context(), sources.CommitRequest{
		BlogID:          blogID,
		OutlineSnapshot: snapshot,
		Results:         aggregator.Results(),
		PrimaryKeyword:  result.PrimaryKeyword,
		Country:         result.Country,
		BlogTitle:       result.BlogTitle,
		Metadata:        h.collector.Metadata(),
	})

	var final domain.StreamEvent
	switch {
	case err == nil:
		final = domain.NewStreamEvent(domain.StatusCompleted, "Sources collection complete and saved")
		final.BlogID = blogID
		final.SavedTo = []string{"outlines", "sources"}
		final.TotalSubsections = aggregator.Count()
		final.TotalSources = aggregator.TotalSources()
		final.SectionsProcessed = outline.SectionCount()
	case r.Context().Err() != nil:
		// Disconnected during the save; nothing left to report to.
		return
	case coreerrors.IsNotFound(err) || coreerrors.IsValidation(err):
		// The store rejected the write (no matching document, bad ID).
		// The collected results are still in the event history the client
		// received, so this is a warning rather than an error.
		final = domain.NewStreamEvent(domain.StatusCompletedWithWarning, "Sources collected but were not saved")
		final.Error = err.Error()
		final.BlogID = blogID
	default:
		final = domain.NewStreamEvent(domain.StatusCompletedWithError, "Sources collected but save operation failed")
		final.Error = err.Error()
		final.BlogID = blogID
	}

	if sink.Send(final) == nil {
		sink.sendDone()
	}
}

// validationErrorEvent maps a gate failure onto a terminal stream event.
func validationErrorEvent(err error) domain.StreamEvent {
	ev := domain.NewStreamEvent(domain.StatusError, err.Error())

	var balErr *coreerrors.InsufficientBalanceError
	if stderrors.As(err, &balErr) {
		ev.ErrorType = "insufficient_balance"
		ev.RequiredBalance = float64Ptr(balErr.RequiredBalance)
		ev.CurrentBalance = float64Ptr(balErr.CurrentBalance)
		ev.Shortfall = float64Ptr(balErr.Shortfall())
		if balErr.NextRefillTime != nil {
			refill := balErr.NextRefillTime.UTC().Format(time.RFC3339)
			ev.NextRefillTime = &refill
		}
		return ev
	}

	switch {
	case coreerrors.IsAccessDenied(err):
		ev.ErrorType = "access_denied"
		ev.Message = "Project access denied"
	case coreerrors.IsNotFound(err):
		ev.ErrorType = "not_found"
	case coreerrors.IsValidation(err):
		ev.ErrorType = "validation_error"
	default:
		ev.ErrorType = "validation_error"
		ev.Message = "Validation failed: " + err.Error()
	}
	return ev
}

func float64Ptr(v float64) *float64 { return &v }
