package handlers

import (
	"net/http"

	"github.com/crucial707/cpe-tracker/internal/middleware"
)

func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	d, err := s.Records.Dashboard(r.Context(), user.ID)
	if err != nil {
		serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", map[string]interface{}{
		"TotalHours":    d.TotalHours,
		"Recent":        d.Recent,
		"CategoryHours": d.CategoryHours,
	})
}
