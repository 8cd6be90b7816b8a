package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/vbonduro/closet/internal/domain"
	"github.com/vbonduro/closet/internal/gateway"
	"github.com/vbonduro/closet/internal/service"
)

type generateRequest struct {
	Style    string `json:"style" validate:"omitempty,oneof=hand-drawn realistic cartoon"`
	ForceNew bool   `json:"forceNew"`
	Gender   string `json:"gender" validate:"omitempty,oneof=girl boy"`
	Weather  string `json:"weather" validate:"omitempty,oneof=Random Sunny Rainy Snowy Cloudy Windy"`
}

func (g generateRequest) toService() service.GenerateRequest {
	return service.GenerateRequest{
		Style:    domain.IllustrationStyle(g.Style),
		ForceNew: g.ForceNew,
		Gender:   domain.Gender(g.Gender),
		Weather:  domain.Weather(g.Weather),
	}
}

// outfitFailure carries whatever outfit survived a failed generation.
type outfitFailure struct {
	service.Snapshot
	Error string `json:"error"`
}

func (s *Server) handleGetOutfit(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.outfits.Current())
}

// handleGenerateOutfit runs a full generation and returns the resulting
// snapshot. A fresh selection whose illustration failed is still returned,
// with the error alongside.
func (s *Server) handleGenerateOutfit(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	outfit, err := s.outfits.Generate(r.Context(), req.toService(), nil)
	if errors.Is(err, gateway.ErrIllustration) {
		if snap := s.outfits.Current(); snap.Outfit != nil {
			status, msg := errorResponse(err)
			s.logger.Warn("outfit not illustrated", "error", err)
			s.writeJSON(w, status, outfitFailure{Snapshot: snap, Error: msg})
			return
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, service.Snapshot{State: service.StateReady, Outfit: outfit})
}

// handleStreamOutfit is the streaming variant. It emits a "selected" event as
// soon as items are picked, then "ready" with the illustrated outfit, or
// "error" with a user-facing message.
func (s *Server) handleStreamOutfit(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sse := &eventWriter{w: w, ctx: r.Context()}
	sse.flusher, _ = w.(http.Flusher)

	// A client that disconnects after selection should still get its
	// illustration stored, so the generation outlives the request.
	ctx := context.WithoutCancel(r.Context())
	outfit, err := s.outfits.Generate(ctx, req.toService(), func(o *domain.Outfit) {
		if err := sse.send("selected", o); err != nil {
			s.logger.Debug("write selected event failed", "error", err)
		}
	})
	if err != nil {
		status, msg := errorResponse(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("outfit stream failed", "error", err)
		} else {
			s.logger.Warn("outfit stream failed", "status", status, "error", err)
		}
		if werr := sse.send("error", map[string]string{"error": msg}); werr != nil {
			s.logger.Debug("write error event failed", "error", werr)
		}
		return
	}
	if err := sse.send("ready", outfit); err != nil {
		s.logger.Debug("write ready event failed", "error", err)
	}
}

// eventWriter writes named server-sent events. Writes after the client has
// gone away are skipped.
type eventWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	ctx     context.Context
}

func (e *eventWriter) send(event string, v any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := e.w.Write([]byte("event: " + event + "\ndata: ")); err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}
	if _, err := e.w.Write([]byte("\n\n")); err != nil {
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
