package internal

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"groupchat/domain"
	"groupchat/projection"
)

//go:embed recent.html
var templatesFS embed.FS

type recentRow struct {
	Key     int
	Author  string
	Body    string
	Deleted bool
}

type recentPage struct {
	Entries []recentRow
}

// StartDebugServer exposes the operational surface on its own listener:
// Prometheus metrics, a liveness probe, and an HTML view of the recent
// message timeline. Best-effort; a failure here never touches the chat
// path.
func StartDebugServer(addr string, timeline *projection.Timeline, log *slog.Logger) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "recent.html"))

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/recent", func(w http.ResponseWriter, r *http.Request) {
		page := recentPage{}
		for _, e := range timeline.Recent() {
			page.Entries = append(page.Entries, recentRow{
				Key:     e.Key,
				Author:  e.Author,
				Body:    e.Body,
				Deleted: e.Body == domain.DeletedBody,
			})
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, page)
	})

	go func() {
		log.Info("Debug server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Warn("Debug server stopped", "error", err)
		}
	}()
}
