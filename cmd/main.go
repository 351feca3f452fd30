package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
	"google.golang.org/grpc/reflection"

	grpcctx "github.com/dtroode/signalements-server/internal/api/grpc/context"
	"github.com/dtroode/signalements-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/signalements-server/internal/api/grpc/server"
	"github.com/dtroode/signalements-server/internal/config"
	"github.com/dtroode/signalements-server/internal/docstore/firestore"
	identity "github.com/dtroode/signalements-server/internal/identity/firebase"
	"github.com/dtroode/signalements-server/internal/logger"
	"github.com/dtroode/signalements-server/internal/metrics"
	"github.com/dtroode/signalements-server/internal/model"
	"github.com/dtroode/signalements-server/internal/probe"
	"github.com/dtroode/signalements-server/internal/repository/postgres"
	"github.com/dtroode/signalements-server/internal/server"
	"github.com/dtroode/signalements-server/internal/service"
	storage "github.com/dtroode/signalements-server/internal/storage/minio"
	"github.com/dtroode/signalements-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	lockRepo := postgres.NewAccountLockRepository(db)
	attemptRepo := postgres.NewLoginAttemptRepository(db)
	pendingRepo := postgres.NewPendingSyncRepository(db)
	stores := service.SyncStores{
		Users:        userRepo,
		Types:        postgres.NewSignalementTypeRepository(db),
		Signalements: postgres.NewSignalementRepository(db),
		Problemes:    postgres.NewProblemeRepository(db),
	}

	app, err := newFirebaseApp(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialize firebase app", "error", err)
	}
	firestoreClient, err := app.Firestore(ctx)
	if err != nil {
		logger.Fatal("failed to create firestore client", "error", err)
	}
	defer firestoreClient.Close()
	authClient, err := app.Auth(ctx)
	if err != nil {
		logger.Fatal("failed to create firebase auth client", "error", err)
	}
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.Firebase.APIKey))
	if err != nil {
		logger.Fatal("failed to create identity toolkit client", "error", err)
	}

	docs := firestore.NewStore(firestoreClient)
	provider := identity.NewProvider(authClient, toolkit)
	connectivity := probe.NewTCPProbe(cfg.Probe.Host, cfg.Probe.Port, cfg.Probe.Timeout)

	signer, err := token.NewJWT(token.Config{Secret: cfg.JWT.Secret})
	if err != nil {
		logger.Fatal("failed to initialize token signer", "error", err)
	}

	attempts := service.NewLoginAttempts(lockRepo, attemptRepo, userRepo, service.AttemptPolicy{
		MaxAttempts:     cfg.Auth.MaxAttempts,
		LockoutDuration: cfg.Auth.LockoutDuration,
	}, logger)
	authService := service.NewAuth(userRepo, docs, provider, connectivity, attempts, signer, pendingRepo, logger, cfg.JWT.TTL)
	syncService := service.NewSync(docs, stores, connectivity, newReportArchive(ctx, cfg.Storage, logger), service.SyncPolicy{
		FixedDelay:   cfg.Sync.FixedDelay,
		InitialDelay: cfg.Sync.InitialDelay,
		FetchTimeout: cfg.Sync.FetchTimeout,
		PassTimeout:  cfg.Sync.PassTimeout,
	}, logger)

	r := router.New(authService, syncService, attempts, connectivity, signer, grpcctx.NewManager(), logger)
	s := r.Register()
	reflection.Register(s)

	servers := []model.Server{
		grpcServer.NewGRPCServer(s, fmt.Sprintf(":%s", cfg.GRPC.Port)),
		server.NewHTTPServer(cfg.Metrics.Addr, metrics.Handler()),
	}

	var sl model.SecurityLayer
	if cfg.GRPC.EnableHTTPS {
		sl = server.NewTLSListener(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	for i, srv := range servers {
		layer := sl
		if i > 0 {
			layer = server.NewPlainListener()
		}
		wg.Add(1)
		go func(s model.Server, layer model.SecurityLayer) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(layer); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
			}
		}(srv, layer)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		syncService.Run(ctx)
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, srv := range servers {
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", srv.Address())
		}
	}
	syncService.Close()

	wg.Wait()
	logger.Info("shutdown complete")
}

func newFirebaseApp(ctx context.Context, cfg config.Firebase) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	return firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
}

// newReportArchive returns nil when object storage is unreachable; passes then run without archiving.
func newReportArchive(ctx context.Context, cfg config.Storage, logger *logger.Logger) model.Storage {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Warn("report archive disabled", "error", err)
		return nil
	}
	client, err := storage.NewClient(ctx, minioClient, cfg.Bucket)
	if err != nil {
		logger.Warn("report archive disabled", "error", err)
		return nil
	}
	return client
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
