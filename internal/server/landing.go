package server

import (
	"net/http"

	"github.com/validateiq/validateiq/internal/logger"
	"github.com/validateiq/validateiq/internal/site"
)

// handleLanding renders the waitlist page with the live signup count.
func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.CountSignups(r.Context())
	if err != nil {
		s.log.Warn("failed to count signups", logger.Error(err))
	}

	view := site.WaitlistView{
		Count:     count,
		Cap:       s.waitlistCap(),
		SpotsLeft: spotsLeft(s.waitlistCap(), count),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := site.Landing(s.content, view).Render(w); err != nil {
		s.log.Warn("failed to render landing page", logger.Error(err))
	}
}
