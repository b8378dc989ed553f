package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/CrowderSoup/minijira/board"
	"github.com/CrowderSoup/minijira/handlers"
	"github.com/CrowderSoup/minijira/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the kanban board and push updates over a websocket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	// Initialize WebSocket hub
	hub := services.NewHub(logger)
	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(hubCtx)
	}()
	defer func() {
		stopHub()
		<-hubDone
	}()

	toaster := services.NewToaster(hub, logger)
	kanban := board.NewKanban(a.store, a.client, toaster, logger)
	defer kanban.Close()
	kanban.SetPageSize(a.pageSize(ctx))

	loadBoard := func() {
		go func() {
			if err := kanban.Load(context.Background()); err != nil {
				logger.Warn("initial board load failed", "error", err)
			}
		}()
	}

	if err := a.auth.Restore(ctx); err != nil {
		return err
	}
	if a.store.State().Auth.IsAuthenticated {
		loadBoard()
	} else {
		logger.Info("no stored session, sign in to load the board")
	}

	// Initialize handlers
	sessionMiddleware := handlers.NewSessionMiddleware(a.store)
	authHandler := handlers.NewAuthHandler(a.auth, loadBoard, logger)
	boardHandler := handlers.NewBoardHandler(kanban, hub, checkOrigin(cfg.AllowedOrigins), logger)
	ticketHandler := handlers.NewTicketHandler(a.client, a.store, kanban.Reload, logger)
	projectHandler := handlers.NewProjectHandler(a.client, a.store, logger)
	developerHandler := handlers.NewDeveloperHandler(a.client, a.store, logger)
	activityHandler := handlers.NewActivityHandler(a.client, logger)
	dashboardHandler := handlers.NewDashboardHandler(kanban.Reload, a.client, a.store, logger)
	preferencesHandler := handlers.NewPreferencesHandler(a.sessions, cfg.PageSize, kanban.SetPageSize, logger)

	hub.HandleMessages(boardHandler.HandleSocketMessage)
	unsubscribe := kanban.Subscribe(boardHandler.PublishSnapshot)
	defer unsubscribe()

	// Setup router
	r := mux.NewRouter()
	r.Use(handlers.Logging(logger))

	// Session routes
	r.HandleFunc("/api/session", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/session", authHandler.Logout).Methods("DELETE")
	r.HandleFunc("/api/session", authHandler.Current).Methods("GET")

	// Everything else needs a signed-in user
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(sessionMiddleware.RequireSession)

	protected.HandleFunc("/board", boardHandler.GetBoard).Methods("GET")
	protected.HandleFunc("/board/reload", boardHandler.Reload).Methods("POST")
	protected.HandleFunc("/board/drag/{phase}", boardHandler.Drag).Methods("POST")
	protected.HandleFunc("/ws", boardHandler.HandleWebSocket)

	protected.HandleFunc("/tickets", ticketHandler.ListTickets).Methods("GET")
	protected.HandleFunc("/tickets", ticketHandler.CreateTicket).Methods("POST")
	protected.HandleFunc("/tickets/{id}", ticketHandler.UpdateTicket).Methods("PUT")
	protected.HandleFunc("/tickets/{id}", ticketHandler.DeleteTicket).Methods("DELETE")
	protected.HandleFunc("/tickets/{id}/time-logs", activityHandler.ListTimeLogs).Methods("GET")
	protected.HandleFunc("/tickets/{id}/time-logs", activityHandler.LogTime).Methods("POST")

	protected.HandleFunc("/projects", projectHandler.ListProjects).Methods("GET")
	protected.Handle("/projects", sessionMiddleware.RequireManager(http.HandlerFunc(projectHandler.CreateProject))).Methods("POST")
	protected.Handle("/projects/{id}", sessionMiddleware.RequireManager(http.HandlerFunc(projectHandler.UpdateProject))).Methods("PUT")
	protected.Handle("/projects/{id}", sessionMiddleware.RequireManager(http.HandlerFunc(projectHandler.DeleteProject))).Methods("DELETE")

	protected.HandleFunc("/developers", developerHandler.ListDevelopers).Methods("GET")
	protected.Handle("/developers", sessionMiddleware.RequireManager(http.HandlerFunc(developerHandler.CreateDeveloper))).Methods("POST")
	protected.Handle("/developers/{id}", sessionMiddleware.RequireManager(http.HandlerFunc(developerHandler.UpdateDeveloper))).Methods("PUT")

	protected.HandleFunc("/activities", activityHandler.ListActivities).Methods("GET")
	protected.HandleFunc("/dashboard", dashboardHandler.GetDashboard).Methods("GET")
	protected.HandleFunc("/preferences", preferencesHandler.Get).Methods("GET")
	protected.HandleFunc("/preferences", preferencesHandler.Update).Methods("PUT")

	// Static file server for a built frontend
	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      c.Handler(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "api", cfg.APIBase())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// checkOrigin allows websocket upgrades from the configured CORS origins.
// A "*" entry allows any origin.
func checkOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, candidate := range allowed {
			if candidate == "*" || candidate == origin {
				return true
			}
		}
		return false
	}
}
