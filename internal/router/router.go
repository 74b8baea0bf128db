package router

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	"lifetag-access/internal/adapters/directory/memdir"
	mem "lifetag-access/internal/adapters/storage/memory"
	pg "lifetag-access/internal/adapters/storage/postgres"
	"lifetag-access/internal/adapters/storage/redisstore"
	"lifetag-access/internal/domain/accessrequests"
	"lifetag-access/internal/domain/records"
	"lifetag-access/internal/domain/verification"
	"lifetag-access/internal/middleware"
	"lifetag-access/internal/notify"
	"lifetag-access/internal/platform/logger"
	"lifetag-access/internal/ports/auth"
	"lifetag-access/internal/ports/directory"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "lifetag-access/docs" // registro del spec OpenAPI generado
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: store de códigos de verificación. Si nil, in-memory.
	Redis *redis.Client

	// Opcional: directorio externo. Si nil, memdir permisivo (modo dev).
	Directory directory.Directory

	Log logger.Logger

	GrantPolicy accessrequests.DurationPolicy
	CodeTTL     time.Duration
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	var (
		requestsRepo accessrequests.Repository
		recordsRepo  records.Repository
		codeStore    verification.Store
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to in-memory", map[string]any{"error": err.Error()})
			}
		}
	}

	if db != nil {
		requestsRepo = pg.NewAccessRequestsRepo(db)
		recordsRepo = pg.NewRecordsRepo(db)
		log.Info("storage: postgres", nil)
	} else {
		requestsRepo = mem.NewAccessRequestsRepo()
		recordsRepo = mem.NewRecordsRepo()
		log.Info("storage: in-memory", nil)
	}

	if opts.Redis != nil {
		codeStore = redisstore.NewVerificationStore(opts.Redis)
	} else {
		codeStore = mem.NewVerificationStore()
	}

	dir := opts.Directory
	if dir == nil {
		dir = memdir.NewPermissive()
	}

	hub := notify.NewHub()

	// Services por módulo
	accessSvc := accessrequests.NewService(requestsRepo, dir, opts.GrantPolicy).WithNotifier(hub)
	recordsSvc := records.NewService(recordsRepo)
	verificationSvc := verification.NewService(codeStore, opts.CodeTTL)

	// Rutas por módulo
	accessrequests.RegisterRoutes(r, accessSvc)
	records.RegisterRoutes(r, recordsSvc, accessSvc)
	verification.RegisterRoutes(r, verificationSvc)
	notify.RegisterRoutes(r, hub)

	return r
}
