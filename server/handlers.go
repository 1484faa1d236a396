package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/rank"
)

type recommendationsResponse struct {
	RequestID string           `json:"request_id,omitempty"`
	Items     []Recommendation `json:"items"`
}

type historyRequest struct {
	ProductID string `json:"product_id"`
}

// parseK 解析参数 k，缺省为 def，超出上限时截到上限。
func (s *Server) parseK(r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("k")
	if raw == "" {
		return def, true
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k <= 0 {
		return 0, false
	}
	return min(k, s.opts.MaxK), true
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	def := rank.DefaultTopK
	if s.svc.Ranker != nil && s.svc.Ranker.TopK > 0 {
		def = s.svc.Ranker.TopK
	}
	k, ok := s.parseK(r, def)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "INVALID_INPUT", "k must be a positive integer", nil)
		return
	}

	ctx := r.Context()
	items, err := s.svc.Recommend(ctx, Request{
		RequestID: logging.RequestID(ctx),
		SessionID: strings.TrimSpace(r.Header.Get(HeaderSessionID)),
		UserID:    strings.TrimSpace(r.Header.Get(HeaderUserID)),
		K:         k,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recommendationsResponse{RequestID: logging.RequestID(ctx), Items: items})
}

func (s *Server) handleRecordHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.Header.Get(HeaderSessionID))
	if sessionID == "" {
		respondError(w, r, http.StatusBadRequest, "INVALID_INPUT", HeaderSessionID+" header is required", nil)
		return
	}
	var body historyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_INPUT", "invalid request body", nil)
		return
	}
	if body.ProductID == "" {
		respondError(w, r, http.StatusBadRequest, "INVALID_INPUT", "product_id is required", nil)
		return
	}
	if err := s.svc.RecordView(r.Context(), sessionID, body.ProductID); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	k, ok := s.parseK(r, rank.DefaultTopK)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "INVALID_INPUT", "k must be a positive integer", nil)
		return
	}
	items, err := s.svc.Similar(r.Context(), chi.URLParam(r, "id"), k)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, recommendationsResponse{RequestID: logging.RequestID(r.Context()), Items: items})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReadyz 向量库已加载且所有依赖可达时返回 200。
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(s.probes)+1)
	ready := true

	if s.svc.Ranker == nil || s.svc.Ranker.Store == nil || s.svc.Ranker.Store.Len() == 0 {
		checks["embedding"] = "not loaded"
		ready = false
	} else {
		checks["embedding"] = "ok"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for name, p := range s.probes {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]any{"ready": ready, "checks": checks})
}
