package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sudipbhatta12/political-app-sub000/internal/analysis"
	"github.com/sudipbhatta12/political-app-sub000/internal/archive"
	"github.com/sudipbhatta12/political-app-sub000/internal/config"
	"github.com/sudipbhatta12/political-app-sub000/internal/models"
	"github.com/sudipbhatta12/political-app-sub000/internal/notifications"
	"github.com/sudipbhatta12/political-app-sub000/internal/report"
	"github.com/sudipbhatta12/political-app-sub000/internal/scheduler"
	"github.com/sudipbhatta12/political-app-sub000/internal/sentiment"
	"github.com/sudipbhatta12/political-app-sub000/internal/store"
)

const (
	dateLayout  = "2006-01-02"
	datePattern = `[0-9]{4}-[0-9]{2}-[0-9]{2}`
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting political sentiment tracker")

	ctx := context.Background()

	// Initialize database
	db, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize the analysis pipeline
	var classifier analysis.Classifier
	if cfg.ClassifierURL != "" {
		classifier = analysis.NewHTTPClassifier(cfg.ClassifierURL, cfg.ClassifierAPIKey)
	} else {
		logrus.Warn("CLASSIFIER_URL not set; post analysis endpoints will be unavailable")
	}
	analysisService := analysis.NewService(db, classifier)

	// Initialize the report generator
	var narrator report.Narrator
	if cfg.OpenAIAPIKey != "" {
		narrator = report.NewOpenAINarrator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		logrus.Info("OPENAI_API_KEY not set; report narratives will use the algorithmic summary")
	}
	generator := report.NewGenerator(db, db, db, narrator, cfg.MixedMargin)

	if cfg.TeamsWebhookURL != "" || cfg.NotificationEmail != "" {
		generator.Notifier = notifications.NewService(cfg)
	}

	var archiver archive.StorageInterface
	if cfg.StorageAccount != "" {
		azureStorage, err := archive.NewAzureStorage(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize report archive: %v", err)
		}
		generator.Archiver = azureStorage
		archiver = azureStorage
	}

	// Start scheduler
	if cfg.EnableScheduler {
		schedulerService := scheduler.NewService(cfg, generator)
		if err := schedulerService.Start(); err != nil {
			logrus.Fatalf("Failed to start scheduler: %v", err)
		}
		defer schedulerService.Stop()
	}

	// Set up HTTP server
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/api/posts/analyze", analyzeHandler(analysisService)).Methods("POST")
	router.HandleFunc("/api/posts/{id:[0-9]+}", deletePostHandler(db)).Methods("DELETE")
	router.HandleFunc("/api/sources/{type}/{id:[0-9]+}/posts", sourcePostsHandler(db)).Methods("GET")
	router.HandleFunc("/api/stats", statsHandler).Methods("POST")
	router.HandleFunc("/api/reports/daily", generateReportHandler(generator)).Methods("POST")
	router.HandleFunc("/api/reports/{date:"+datePattern+"}", getReportHandler(db)).Methods("GET")
	router.HandleFunc("/api/reports", reportHistoryHandler(db)).Methods("GET")
	if archiver != nil {
		router.HandleFunc("/api/reports/snapshots", snapshotListHandler(archiver)).Methods("GET")
		router.HandleFunc("/api/reports/{date:"+datePattern+"}/snapshot", reportSnapshotHandler(archiver)).Methods("GET")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

type analyzeRequest struct {
	SourceType    string                `json:"source_type"`
	SourceID      int64                 `json:"source_id"`
	PostURL       string                `json:"post_url,omitempty"`
	PublishedDate string                `json:"published_date,omitempty"`
	Force         bool                  `json:"force,omitempty"`
	Comments      []analysis.RawComment `json:"comments"`
}

func analyzeHandler(service *analysis.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sourceType, err := models.ParseSourceType(body.SourceType)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		req := analysis.AnalyzeRequest{
			SourceType: sourceType,
			SourceID:   body.SourceID,
			PostURL:    body.PostURL,
			Force:      body.Force,
			Comments:   body.Comments,
		}
		if body.PublishedDate != "" {
			date, err := time.Parse(dateLayout, body.PublishedDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "published_date must be YYYY-MM-DD")
				return
			}
			req.PublishedDate = date
		}

		post, err := service.AnalyzeAndStore(r.Context(), req)
		if err != nil {
			var dup *analysis.DuplicateSourceError
			var invalid *analysis.ValidationError
			switch {
			case errors.As(err, &dup):
				writeJSON(w, http.StatusConflict, map[string]interface{}{
					"error":            "duplicate_source",
					"message":          dup.Error(),
					"existing_post_id": dup.ExistingPostID,
					"existing_date":    dup.ExistingDate.Format(dateLayout),
				})
			case errors.As(err, &invalid):
				writeError(w, http.StatusBadRequest, invalid.Error())
			default:
				logrus.Errorf("Analysis failed: %v", err)
				writeError(w, http.StatusInternalServerError, "analysis failed")
			}
			return
		}

		writeJSON(w, http.StatusCreated, post)
	}
}

func deletePostHandler(posts store.PostStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid post id")
			return
		}

		if err := posts.DeletePost(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "post not found")
				return
			}
			logrus.Errorf("Failed to delete post %d: %v", id, err)
			writeError(w, http.StatusInternalServerError, "delete failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
	}
}

// sourcePostsHandler returns a source's analysis timeline, newest first.
func sourcePostsHandler(posts store.PostStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		sourceType, err := models.ParseSourceType(vars["type"])
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		id, err := strconv.ParseInt(vars["id"], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid source id")
			return
		}

		timeline, err := posts.PostsBySource(r.Context(), sourceType, id)
		if err != nil {
			logrus.Errorf("Failed to load posts for %s %d: %v", sourceType, id, err)
			writeError(w, http.StatusInternalServerError, "failed to load posts")
			return
		}

		writeJSON(w, http.StatusOK, timeline)
	}
}

// statsHandler computes live aggregate stats for a set of posts without
// persisting anything; the UI uses it for entity cards and charts.
func statsHandler(w http.ResponseWriter, r *http.Request) {
	var posts []models.Post
	if err := json.NewDecoder(r.Body).Decode(&posts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, sentiment.Aggregate(posts))
}

func generateReportHandler(generator *report.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Date string `json:"date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		date, err := time.Parse(dateLayout, body.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		generated, err := generator.Generate(r.Context(), date)
		if err != nil {
			var noData *report.NoDataError
			if errors.As(err, &noData) {
				// Nothing to report is not an error state
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"no_data": true,
					"message": noData.Error(),
				})
				return
			}
			logrus.Errorf("Report generation failed: %v", err)
			writeError(w, http.StatusInternalServerError, "report generation failed")
			return
		}

		writeJSON(w, http.StatusOK, generated)
	}
}

func getReportHandler(reports store.ReportStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := time.Parse(dateLayout, mux.Vars(r)["date"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		result, err := reports.ReportByDate(r.Context(), date)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no report for date")
				return
			}
			logrus.Errorf("Failed to load report: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to load report")
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func reportHistoryHandler(reports store.ReportStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 30
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = parsed
		}

		history, err := reports.ReportHistory(r.Context(), limit)
		if err != nil {
			logrus.Errorf("Failed to load report history: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to load report history")
			return
		}

		writeJSON(w, http.StatusOK, history)
	}
}

// reportSnapshotHandler serves the archived JSON snapshot written when the
// report was generated, as opposed to the live database row.
func reportSnapshotHandler(snapshots archive.StorageInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := time.Parse(dateLayout, mux.Vars(r)["date"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		data, err := snapshots.Retrieve(fmt.Sprintf("reports/%s.json", date.Format(dateLayout)))
		if err != nil {
			logrus.Debugf("Snapshot lookup failed for %s: %v", date.Format(dateLayout), err)
			writeError(w, http.StatusNotFound, "no archived snapshot for date")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func snapshotListHandler(snapshots archive.StorageInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := snapshots.List("reports/")
		if err != nil {
			logrus.Errorf("Failed to list report snapshots: %v", err)
			writeError(w, http.StatusInternalServerError, "failed to list snapshots")
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"snapshots": names})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
