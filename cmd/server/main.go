package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/handler"
	"docvault/internal/middleware"
	"docvault/internal/repository/postgres"
	postgresDocsys "docvault/internal/repository/postgres/docsystem"
	accessSvc "docvault/internal/service/auth"
	"docvault/internal/service/chatbot"
	serviceDocsys "docvault/internal/service/docsystem"
	"docvault/internal/service/docsystem/converter"
	"docvault/internal/service/identity"
	serviceLLM "docvault/internal/service/llm"
	"docvault/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logOut io.Writer = os.Stdout
	if cfg.Log.Dir != "" {
		f, err := config.SetupLogFile(cfg.Log.Dir, cfg.Log.MaxFiles)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logOut = io.MultiWriter(os.Stdout, f)
	}
	logger := config.NewLogger(cfg.Log, logOut)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()
	logger.Info("database connected", "max_conns", cfg.Database.MaxConns, "min_conns", cfg.Database.MinConns)

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.DefaultTables(),
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	deptRepo := postgres.NewDepartmentRepository(repoConfig)
	folderRepo := postgresDocsys.NewFolderRepository(repoConfig)
	docRepo := postgresDocsys.NewDocumentRepository(repoConfig)
	tagRepo := postgresDocsys.NewTagRepository(repoConfig)
	invoiceRepo := postgresDocsys.NewInvoiceRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	fileStore, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		log.Fatalf("Failed to set up file storage: %v", err)
	}

	tokens, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, logger)
	if err != nil {
		log.Fatalf("Failed to create token manager: %v", err)
	}
	var verifier auth.TokenVerifier = tokens
	if cfg.Auth.JWKSURL != "" {
		jwks, err := auth.NewJWKSVerifier(cfg.Auth.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWKS verifier: %v", err)
		}
		verifier = auth.ChainVerifier{tokens, jwks}
	}
	defer verifier.Close()

	providers, err := serviceLLM.SetupProviders(cfg.LLM, logger)
	if err != nil {
		log.Fatalf("Failed to setup LLM providers: %v", err)
	}
	knowledge, err := chatbot.LoadKnowledge()
	if err != nil {
		log.Fatalf("Failed to load chatbot knowledge: %v", err)
	}

	// Identity
	departmentService := identity.NewDepartmentService(deptRepo, userRepo, logger)
	authService := identity.NewAuthService(userRepo, departmentService, tokens, verifier, logger)
	userService := identity.NewUserService(userRepo, departmentService, logger)

	// Access control
	resolver := accessSvc.NewAccessResolver(folderRepo, docRepo, logger)
	composer := accessSvc.NewQueryComposer(resolver, invoiceRepo, logger)

	// Document system
	validator := serviceDocsys.NewResourceValidator(userRepo, deptRepo, tagRepo)
	indexer := serviceDocsys.NewIndexer(docRepo, fileStore, converter.NewConverterRegistry(), config.ExtractionWorkers, logger)
	folderService := serviceDocsys.NewFolderService(folderRepo, docRepo, resolver, composer, logger)
	docService := serviceDocsys.NewDocumentService(docRepo, resolver, composer, fileStore, indexer, validator, logger)
	sharingService := serviceDocsys.NewSharingService(folderRepo, docRepo, validator, logger)
	tagService := serviceDocsys.NewTagService(tagRepo, docRepo, txManager, logger)
	invoiceService := serviceDocsys.NewInvoiceService(invoiceRepo, docRepo, resolver, composer, logger)

	chatbotService := chatbot.NewChatbotService(userRepo, departmentService, docRepo, composer, providers, knowledge, chatbot.Options{
		DefaultModel: cfg.LLM.DefaultModel,
		MaxTokens:    cfg.LLM.MaxTokens,
		Timeout:      cfg.LLM.Timeout,
	}, logger)

	logger.Info("services initialized", "llm_providers", providers.Len())

	mux := handler.NewRouter(&handler.Handlers{
		Auth:        handler.NewAuthHandler(authService, logger),
		Users:       handler.NewUserHandler(userService, logger),
		Departments: handler.NewDepartmentHandler(departmentService, logger),
		Folders:     handler.NewFolderHandler(folderService, sharingService, logger),
		Documents:   handler.NewDocumentHandler(docService, sharingService, logger),
		Tags:        handler.NewTagHandler(tagService, logger),
		Invoices:    handler.NewInvoiceHandler(invoiceService, logger),
		Chatbot:     handler.NewChatbotHandler(chatbotService, logger),
		Health:      handler.NewHealthHandler(pool, logger),
	}, middleware.RequireAuth(authService, logger))

	// Order: CORS → RequestID → Logger → Recovery → Routes
	var h http.Handler = middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)(mux)

	// CORS must wrap everything so OPTIONS pre-flight never reaches auth
	h = cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-Id"},
		AllowCredentials: true,
	}).Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr, "public_url", cfg.Server.PublicURL)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := indexer.Close(shutdownCtx); err != nil {
		logger.Warn("indexer did not drain", "error", err)
	}
	logger.Info("server stopped")
}
