package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/validateiq/validateiq/internal/api"
	"github.com/validateiq/validateiq/internal/logger"
	"github.com/validateiq/validateiq/internal/store"
)

// maxBodyBytes bounds every JSON body the tracker sends.
const maxBodyBytes = 64 << 10

type HealthResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	DBSizeBytes   int64  `json:"db_size_bytes,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:        "healthy",
		Service:       "ValidateIQ",
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}

	if db, ok := s.store.(interface{ DB() *sql.DB }); ok {
		row := db.DB().QueryRowContext(r.Context(), "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&response.DBSizeBytes); err != nil {
			s.log.Warn("failed to read database size", logger.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	var req api.InitRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	attr := store.Attribution{
		Referrer:    req.Referrer,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		UTMContent:  req.UTMContent,
	}

	visitor, err := s.store.GetOrCreateVisitor(ctx, clientIP(r), parseDevice(r.UserAgent()), attr)
	if err != nil {
		s.internalError(w, "failed to get or create visitor", err)
		return
	}

	pv, err := s.store.CreatePageView(ctx, visitor.ID, attr, store.Dimensions{
		ScreenWidth:    req.ScreenWidth,
		ScreenHeight:   req.ScreenHeight,
		ViewportWidth:  req.ViewportWidth,
		ViewportHeight: req.ViewportHeight,
	})
	if err != nil {
		s.internalError(w, "failed to create page view", err)
		return
	}

	returning := visitor.TotalVisits > 1
	PageViewsTotal.WithLabelValues(strconv.FormatBool(returning)).Inc()

	writeJSON(w, http.StatusOK, api.InitResponse{
		VisitorID:   visitor.ID,
		PageViewID:  pv.ID,
		IsReturning: returning,
		VisitCount:  visitor.TotalVisits,
	})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	visitorID, err := strconv.ParseInt(q.Get("visitor_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "visitor_id must be an integer")
		return
	}

	var pageViewID *int64
	if raw := q.Get("page_view_id"); raw != "" && raw != "null" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "page_view_id must be an integer")
			return
		}
		pageViewID = &id
	}

	var req api.Event
	if !s.decode(w, r, &req) {
		return
	}
	if req.EventType == "" {
		writeError(w, http.StatusUnprocessableEntity, "event_type is required")
		return
	}

	id, err := s.store.RecordEvent(r.Context(), &store.Event{
		VisitorID:         visitorID,
		PageViewID:        pageViewID,
		EventType:         req.EventType,
		EventCategory:     req.EventCategory,
		ElementID:         req.ElementID,
		ElementClass:      req.ElementClass,
		ElementText:       req.ElementText,
		Section:           req.Section,
		Properties:        req.Properties,
		ScrollPosition:    req.ScrollPosition,
		TimeSincePageLoad: req.TimeSincePageLoad,
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Visitor not found")
		return
	}
	if err != nil {
		s.internalError(w, "failed to record event", err)
		return
	}

	EventsTotal.WithLabelValues(req.EventType).Inc()
	writeJSON(w, http.StatusOK, api.EventResponse{EventID: id})
}

func (s *Server) handlePageViewUpdate(w http.ResponseWriter, r *http.Request) {
	var req api.PageViewUpdate
	if !s.decode(w, r, &req) {
		return
	}

	_, err := s.store.UpdatePageView(r.Context(), req.PageViewID, store.PageViewUpdate{
		TimeOnPageSeconds: req.TimeOnPageSeconds,
		MaxScrollDepth:    req.MaxScrollDepth,
		ReachedForm:       req.ReachedForm,
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.internalError(w, "failed to update page view", err)
		return
	}

	writeJSON(w, http.StatusOK, api.SuccessResponse{Success: true})
}

// handleBeacon accepts any content type; sendBeacon posts text/plain.
func (s *Server) handleBeacon(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	var req api.Beacon
	if err := json.Unmarshal(body, &req); err != nil || req.PageViewID == 0 {
		writeError(w, http.StatusUnprocessableEntity, "Invalid beacon")
		return
	}

	_, err = s.store.FinalizePageView(r.Context(), req.PageViewID, req.TimeOnPageSeconds, req.MaxScrollDepth)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.log.Debug("beacon for unknown page view", slog.Int64("page_view_id", req.PageViewID))
	case err != nil:
		s.internalError(w, "failed to finalize page view", err)
		return
	}

	BeaconsTotal.Inc()
	writeJSON(w, http.StatusOK, api.SuccessResponse{Success: true})
}

// decode reads a JSON body into v, answering 422 when it is malformed.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid JSON body")
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.log.Error(msg, logger.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
