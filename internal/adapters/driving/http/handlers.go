package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status"`
}

// metadataFields are the optional form fields attached to an upload and
// carried onto every chunk of the document.
var metadataFields = []string{"region", "certifications", "primary_crops"}

// Health endpoints

// handleHealth returns the health of the service and its dependencies.
// Degraded dependencies yield 503 with per-component detail.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	components := map[string]string{}
	healthy := true

	if err := s.db.Ping(ctx); err != nil {
		components["postgres"] = err.Error()
		healthy = false
	} else {
		components["postgres"] = "ok"
	}

	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx); err != nil {
			components["redis"] = err.Error()
			healthy = false
		} else {
			components["redis"] = "ok"
		}
	}

	if err := s.queue.Ping(ctx); err != nil {
		components["queue"] = err.Error()
		healthy = false
	} else {
		components["queue"] = "ok"
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"components": components,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Query endpoint

// handleQuery runs one retrieval-augmented conversation turn. Turn failures
// return a generic body so model and tool errors never leak to callers.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req driving.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.chatService.Ask(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "question is required")
		case errors.Is(err, domain.ErrChatTurn):
			s.logger.Error("chat turn failed", "thread_id", req.ThreadID, "error", err)
			writeError(w, http.StatusBadGateway, "failed to answer question")
		default:
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Document endpoints

// handleUploadDocument accepts a multipart upload and queues it for
// ingestion. The response is returned as soon as the record and job are
// durable; indexing happens asynchronously.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	// Allow some slack for the multipart framing around a max-size file.
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxUploadSize+1<<20)

	if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mediaType
	}

	metadata := make(map[string]string)
	for _, field := range metadataFields {
		if v := r.FormValue(field); v != "" {
			metadata[field] = v
		}
	}

	result, err := s.docService.Upload(r.Context(), driving.UploadRequest{
		Filename: header.Filename,
		MimeType: mimeType,
		Data:     data,
		Metadata: metadata,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnsupportedMIMEType):
			writeError(w, http.StatusUnsupportedMediaType, "only pdf and docx uploads are supported")
		case errors.Is(err, domain.ErrFileTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the 10MB limit")
		default:
			s.logger.Error("upload failed", "filename", header.Filename, "error", err)
			writeError(w, http.StatusInternalServerError, "upload failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get document")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.docService.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleReindexDocument re-enqueues an existing document with the force
// flag, bypassing the redelivery no-op guard.
func (s *Server) handleReindexDocument(w http.ResponseWriter, r *http.Request) {
	result, err := s.docService.Reindex(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "reindex failed")
		return
	}

	writeJSON(w, http.StatusAccepted, result)
}

// Prompt endpoints

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	prompt, err := s.promptService.GetPrompt(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get prompt")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"prompt": prompt})
}

func (s *Server) handleUpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.promptService.SetPrompt(r.Context(), req.Prompt); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "prompt is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update prompt")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Stats endpoint

func (s *Server) handleQueueStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.queue.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get queue stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
