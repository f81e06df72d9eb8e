package graphql

import (
	"encoding/json"
	"fmt"
	"net/http"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"ms-feedback/internal/logger"
)

// StreamHandler delivers subscription operations as server-sent events
// on GET /graphql (the graphql-sse protocol: "next" frames, then
// "complete"). Queries and mutations use the POST handler instead.
type StreamHandler struct {
	Schema *graphqlgo.Schema
	Logger *logger.Logger
}

func NewStreamHandler(schema *graphqlgo.Schema, log *logger.Logger) *StreamHandler {
	return &StreamHandler{Schema: schema, Logger: log}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		http.Error(w, "query parameter is required", http.StatusBadRequest)
		return
	}
	operationName := r.URL.Query().Get("operationName")

	var variables map[string]interface{}
	if raw := r.URL.Query().Get("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &variables); err != nil {
			http.Error(w, "invalid variables JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Cancelling this context tears down the fan-out registration.
	ctx := r.Context()

	payloads, err := h.Schema.Subscribe(ctx, query, operationName, variables)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.setupSSEHeaders(w)
	flusher.Flush()

	h.Logger.Info("SSE", "Client connected to feedback stream")

	for {
		select {
		case payload, ok := <-payloads:
			if !ok {
				fmt.Fprint(w, "event: complete\ndata:\n\n")
				flusher.Flush()
				h.Logger.Debug("SSE", "Subscription completed")
				return
			}

			jsonData, err := json.Marshal(payload)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize subscription payload: %v", err))
				continue
			}

			fmt.Fprintf(w, "event: next\ndata: %s\n\n", jsonData)
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", "Client disconnected from feedback stream")
			return
		}
	}
}

func (h *StreamHandler) setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
