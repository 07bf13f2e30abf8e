package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"sort"
	"strconv"

	"gorm.io/gorm"

	"github.com/camuig/sina-stock-bot/internal/market"
	"github.com/camuig/sina-stock-bot/internal/storage"
)

const (
	defaultPushLimit = 20
	maxPushLimit     = 500
)

//go:embed templates/dashboard.html
var templates embed.FS

var dashboardTmpl = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"label": market.Label,
}).ParseFS(templates, "templates/dashboard.html"))

type GroupView struct {
	ID       string
	Notify   bool
	List     []market.Security
	LastPush *storage.PushLog
}

type DashboardData struct {
	Groups        []GroupView
	Subscriptions int
	RecentPushes  []storage.PushLog
}

func (s *Server) groupViews() []GroupView {
	doc := s.store.Snapshot()
	views := make([]GroupView, 0, len(doc.Group))
	for id, g := range doc.Group {
		views = append(views, GroupView{ID: id, Notify: g.Notify, List: g.List})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })

	for i := range views {
		last, err := s.repo.GetLastPush(views[i].ID)
		switch {
		case err == nil:
			views[i].LastPush = last
		case !errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.Error("load last push", "group", views[i].ID, "error", err)
		}
	}
	return views
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := DashboardData{Groups: s.groupViews()}
	for _, g := range data.Groups {
		data.Subscriptions += len(g.List)
	}

	if pushes, err := s.repo.GetRecentPushLogs(defaultPushLimit); err == nil {
		data.RecentPushes = pushes
	} else {
		s.logger.Error("load recent pushes", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		s.logger.Error("execute template", "error", err)
	}
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.store.Snapshot())
}

func (s *Server) handlePushes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultPushLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxPushLimit)
	}

	pushes, err := s.repo.GetRecentPushLogs(limit)
	if err != nil {
		s.logger.Error("load recent pushes", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if pushes == nil {
		pushes = []storage.PushLog{}
	}
	s.writeJSON(w, pushes)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}
