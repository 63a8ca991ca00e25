package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kintree/internal/config"
	"kintree/internal/database"
	"kintree/internal/graph"
	"kintree/internal/handlers"
	"kintree/internal/importer"
	"kintree/internal/repository"
	"kintree/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	collabRepo := repository.NewCollaboratorRepository(db)
	requestRepo := repository.NewAccessRequestRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	regionRepo := repository.NewRegionRepository(db)
	relationshipRepo := repository.NewRelationshipRepository(db)
	positionRepo := repository.NewPositionRepository(db)

	// Initialize core engines
	importEngine := importer.NewEngine(db)
	assembler := graph.NewAssembler(memberRepo, regionRepo, relationshipRepo, positionRepo)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenDuration)
	familyService := service.NewFamilyService(familyRepo, collabRepo, requestRepo, userRepo, emailService)
	memberService := service.NewMemberService(memberRepo, positionRepo, regionRepo, familyService)
	regionService := service.NewRegionService(regionRepo, familyService)
	relationshipService := service.NewRelationshipService(relationshipRepo, memberRepo, assembler, familyService)
	presetService := service.NewPresetService(cfg.PresetsPath)
	importService := service.NewImportService(importEngine, presetService)

	// Initialize handlers
	middleware := handlers.NewMiddleware(authService)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	familyHandler := handlers.NewFamilyHandler(familyService, importService, presetService)
	memberHandler := handlers.NewMemberHandler(memberService)
	regionHandler := handlers.NewRegionHandler(regionService)
	relationshipHandler := handlers.NewRelationshipHandler(relationshipService)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/google/start", authHandler.StartGoogleOAuth)
	mux.HandleFunc("GET /api/auth/google/callback", authHandler.GoogleOAuthCallback)

	// Authenticated routes
	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(authHandler.Me))

	mux.HandleFunc("POST /api/families", middleware.RequireAuth(familyHandler.Create))
	mux.HandleFunc("GET /api/families", middleware.RequireAuth(familyHandler.List))
	mux.HandleFunc("GET /api/families/presets", middleware.RequireAuth(familyHandler.ListPresets))
	mux.HandleFunc("POST /api/families/import", middleware.RequireAuth(familyHandler.Import))
	mux.HandleFunc("POST /api/families/import-preset/{key}", middleware.RequireAuth(familyHandler.ImportPreset))
	mux.HandleFunc("GET /api/families/{id}", middleware.RequireAuth(familyHandler.Get))
	mux.HandleFunc("PUT /api/families/{id}", middleware.RequireAuth(familyHandler.Update))
	mux.HandleFunc("DELETE /api/families/{id}", middleware.RequireAuth(familyHandler.Delete))
	mux.HandleFunc("GET /api/families/{id}/members", middleware.RequireAuth(memberHandler.List))
	mux.HandleFunc("GET /api/families/{id}/regions", middleware.RequireAuth(regionHandler.List))
	mux.HandleFunc("POST /api/families/{id}/collaborators", middleware.RequireAuth(familyHandler.InviteCollaborator))
	mux.HandleFunc("GET /api/families/{id}/collaborators", middleware.RequireAuth(familyHandler.ListCollaborators))
	mux.HandleFunc("DELETE /api/families/{id}/collaborators/{user_id}", middleware.RequireAuth(familyHandler.RemoveCollaborator))
	mux.HandleFunc("POST /api/families/{id}/access-requests", middleware.RequireAuth(familyHandler.RequestAccess))

	mux.HandleFunc("GET /api/access-requests", middleware.RequireAuth(familyHandler.ListAccessRequests))
	mux.HandleFunc("POST /api/access-requests/{id}/approve", middleware.RequireAuth(familyHandler.DecideAccessRequest(true)))
	mux.HandleFunc("POST /api/access-requests/{id}/reject", middleware.RequireAuth(familyHandler.DecideAccessRequest(false)))

	mux.HandleFunc("POST /api/members", middleware.RequireAuth(memberHandler.Create))
	mux.HandleFunc("PUT /api/members/positions", middleware.RequireAuth(memberHandler.UpdatePositions))
	mux.HandleFunc("GET /api/members/{id}", middleware.RequireAuth(memberHandler.Get))
	mux.HandleFunc("PUT /api/members/{id}", middleware.RequireAuth(memberHandler.Update))
	mux.HandleFunc("DELETE /api/members/{id}", middleware.RequireAuth(memberHandler.Delete))

	mux.HandleFunc("POST /api/regions", middleware.RequireAuth(regionHandler.Create))
	mux.HandleFunc("GET /api/regions/{id}", middleware.RequireAuth(regionHandler.Get))
	mux.HandleFunc("PUT /api/regions/{id}", middleware.RequireAuth(regionHandler.Update))
	mux.HandleFunc("DELETE /api/regions/{id}", middleware.RequireAuth(regionHandler.Delete))
	mux.HandleFunc("POST /api/regions/{id}/members/{member_id}", middleware.RequireAuth(regionHandler.AddMember))
	mux.HandleFunc("DELETE /api/regions/{id}/members/{member_id}", middleware.RequireAuth(regionHandler.RemoveMember))

	mux.HandleFunc("POST /api/relationships/spouse", middleware.RequireAuth(relationshipHandler.CreateSpouse))
	mux.HandleFunc("PUT /api/relationships/spouse/{id}", middleware.RequireAuth(relationshipHandler.UpdateSpouse))
	mux.HandleFunc("DELETE /api/relationships/spouse/{id}", middleware.RequireAuth(relationshipHandler.DeleteSpouse))
	mux.HandleFunc("POST /api/relationships/parent-child", middleware.RequireAuth(relationshipHandler.CreateParentChild))
	mux.HandleFunc("DELETE /api/relationships/parent-child/{id}", middleware.RequireAuth(relationshipHandler.DeleteParentChild))
	mux.HandleFunc("GET /api/relationships/graph/{family_id}", middleware.RequireAuth(relationshipHandler.Graph))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Drain in-flight requests before exiting
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped")
}
