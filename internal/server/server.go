// Package server exposes the dashboard, the setup form, and the OAuth
// callback over HTTP. The dashboard renders the stored snapshot; the setup
// form overwrites the settings document wholesale and reschedules the
// ingestion pipeline.
package server

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/tubesweep/tubesweep/internal/models"
)

// SettingsStore abstracts the settings document for the handlers.
type SettingsStore interface {
	Load() (models.Settings, error)
	Save(settings models.Settings) error
}

// CommentStore supplies the snapshot rendered on the dashboard.
type CommentStore interface {
	Load() (models.Snapshot, error)
}

// Rescheduler swaps the ingestion schedule when settings change.
type Rescheduler interface {
	Reschedule(expr string) error
}

// OAuthExchanger completes the authorization-code flow.
type OAuthExchanger interface {
	Exchange(ctx context.Context, settings models.Settings, code string) error
}

// Runner triggers an ingestion run on demand.
type Runner interface {
	Run(ctx context.Context) error
}

type Server struct {
	settings       SettingsStore
	comments       CommentStore
	scheduler      Rescheduler
	auth           OAuthExchanger
	runner         Runner
	runTimeout     time.Duration
	validate       *validator.Validate
	sanitizer      *bluemonday.Policy
	metricsHandler http.Handler
}

func New(
	settings SettingsStore,
	comments CommentStore,
	scheduler Rescheduler,
	auth OAuthExchanger,
	runner Runner,
	runTimeout time.Duration,
	metricsHandler http.Handler,
) *Server {
	return &Server{
		settings:       settings,
		comments:       comments,
		scheduler:      scheduler,
		auth:           auth,
		runner:         runner,
		runTimeout:     runTimeout,
		validate:       validator.New(),
		sanitizer:      bluemonday.UGCPolicy(),
		metricsHandler: metricsHandler,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handleDashboard)
	r.Get("/setup", s.handleSetupForm)
	r.Post("/setup", s.handleSetupSubmit)
	r.Get("/oauth2callback", s.handleOAuthCallback)
	r.Post("/run", s.handleRun)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok"}`)
	})
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("Handled request", "method", r.Method, "path", r.URL.Path, "duration_ms", time.Since(start).Milliseconds())
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Load()
	if err != nil {
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	if !settings.Configured() {
		http.Redirect(w, r, "/setup", http.StatusFound)
		return
	}

	snapshot, err := s.comments.Load()
	if err != nil {
		http.Error(w, "failed to load comments", http.StatusInternalServerError)
		return
	}

	data := s.buildDashboard(snapshot)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, data); err != nil {
		slog.Error("Failed to render dashboard", "error", err)
	}
}

// buildDashboard derives the view model. A repeated (id, text) pair marks a
// comment as a duplicate; it is a display-only signal on top of the
// ingestion-time id dedupe.
func (s *Server) buildDashboard(snapshot models.Snapshot) dashboardData {
	seen := make(map[string]bool, len(snapshot.Comments))
	spamUsers := make(map[string]struct{})

	var data dashboardData
	data.TotalComments = len(snapshot.Comments)

	for _, comment := range snapshot.Comments {
		key := comment.ID + "|" + comment.Text
		duplicate := seen[key]
		seen[key] = true

		spam := comment.IsSpam() || duplicate
		if spam {
			data.SpamComments++
			spamUsers[comment.User] = struct{}{}
		}

		data.Comments = append(data.Comments, commentView{
			User:      comment.User,
			Text:      template.HTML(s.sanitizer.Sanitize(comment.Text)),
			Timestamp: comment.PublishedAt().Local().Format("1/2/2006, 3:04:05 PM"),
			ID:        comment.ID,
			Spam:      spam,
			Duplicate: duplicate,
		})
	}

	data.SpamUsers = len(spamUsers)
	data.SpamPercentage = "0"
	if data.TotalComments > 0 {
		data.SpamPercentage = strconv.FormatFloat(
			float64(data.SpamComments)/float64(data.TotalComments)*100, 'f', 1, 64)
	}
	return data
}

func (s *Server) handleSetupForm(w http.ResponseWriter, _ *http.Request) {
	data := setupData{
		Days: []selectOption{
			{1, "Sunday (0)"}, {2, "Monday (1)"}, {3, "Tuesday (2)"}, {4, "Wednesday (3)"},
			{5, "Thursday (4)"}, {6, "Friday (5)"}, {7, "Saturday (6)"},
		},
	}
	for i := 0; i < 24; i++ {
		data.Hours = append(data.Hours, selectOption{i + 1, fmt.Sprintf("%02d", i)})
	}
	for i := 0; i < 60; i++ {
		data.Minutes = append(data.Minutes, selectOption{i + 1, fmt.Sprintf("%02d", i)})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := setupTemplate.Execute(w, data); err != nil {
		slog.Error("Failed to render setup form", "error", err)
	}
}

type settingsForm struct {
	APIKey       string `validate:"required"`
	ChannelID    string `validate:"required"`
	ClientID     string
	ClientSecret string
}

func (s *Server) handleSetupSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	form := settingsForm{
		APIKey:       r.FormValue("apiKey"),
		ChannelID:    r.FormValue("channelId"),
		ClientID:     r.FormValue("clientId"),
		ClientSecret: r.FormValue("clientSecret"),
	}
	if err := s.validate.Struct(form); err != nil {
		http.Error(w, fmt.Sprintf("invalid settings: %v", err), http.StatusBadRequest)
		return
	}

	schedule, err := buildSchedule(
		r.FormValue("scheduleMinute"), r.FormValue("scheduleHour"), r.FormValue("scheduleDay"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid schedule: %v", err), http.StatusBadRequest)
		return
	}

	// Reschedule before persisting so an invalid cron expression never
	// reaches the settings document.
	if err := s.scheduler.Reschedule(schedule); err != nil {
		slog.Error("Invalid cron expression", "schedule", schedule, "error", err)
		http.Error(w, fmt.Sprintf("invalid cron expression: %v", err), http.StatusBadRequest)
		return
	}

	settings := models.Settings{
		APIKey:       form.APIKey,
		ChannelID:    form.ChannelID,
		ClientID:     form.ClientID,
		ClientSecret: form.ClientSecret,
		Schedule:     schedule,
	}
	if err := s.settings.Save(settings); err != nil {
		http.Error(w, "failed to save settings", http.StatusInternalServerError)
		return
	}
	slog.Info("Settings saved", "channel_id", settings.ChannelID, "schedule", schedule)

	http.Redirect(w, r, "/", http.StatusFound)
}

// buildSchedule turns the form's select values into a 5-field cron
// expression. A "0" value means "every"; any other value is offset by one
// because position 0 in each select is the wildcard option.
func buildSchedule(minute, hour, day string) (string, error) {
	minuteField, err := selectField(minute, 60)
	if err != nil {
		return "", fmt.Errorf("minute: %w", err)
	}
	hourField, err := selectField(hour, 24)
	if err != nil {
		return "", fmt.Errorf("hour: %w", err)
	}
	dayField, err := selectField(day, 7)
	if err != nil {
		return "", fmt.Errorf("day: %w", err)
	}
	return fmt.Sprintf("%s %s * * %s", minuteField, hourField, dayField), nil
}

func selectField(value string, size int) (string, error) {
	if value == "" || value == "0" {
		return "*", nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > size {
		return "", fmt.Errorf("value %q out of range", value)
	}
	return strconv.Itoa(n - 1), nil
}

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	settings, err := s.settings.Load()
	if err != nil {
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	if err := s.auth.Exchange(r.Context(), settings, code); err != nil {
		slog.Error("OAuth code exchange failed", "error", err)
		http.Error(w, "authorization failed", http.StatusInternalServerError)
		return
	}
	slog.Info("OAuth token stored")

	http.Redirect(w, r, "/", http.StatusFound)
}

// handleRun kicks off an ingestion run without waiting for it, mirroring the
// cron trigger.
func (s *Server) handleRun(w http.ResponseWriter, _ *http.Request) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Panic in ingestion run", "panic", rec)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()
		if err := s.runner.Run(ctx); err != nil {
			slog.Error("Ingestion run failed", "error", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintln(w, "Ingestion run started.")
}
