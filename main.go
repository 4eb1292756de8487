package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"Stairs/internal/auth"
	"Stairs/internal/calc/report"
	"Stairs/internal/calc/stairs"
	"Stairs/internal/catalog"
	"Stairs/internal/catalog/importer"
	"Stairs/internal/catalog/scrape"
	"Stairs/internal/config"
	"Stairs/internal/repo"

	"github.com/gorilla/mux"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

type app struct {
	cfg   config.Config
	store *catalog.Store
	// nil without DATABASE_URL
	repo *repo.PostgresCatalogRepository
}

func HandleList(mux *mux.Router, a *app) {
	calc := stairs.NewCalculator(a.store, a.cfg.StepHeightMM)
	stairsH := &stairs.Handler{Calc: calc}
	reportH := &report.Handler{Calc: calc, FontPath: a.cfg.ReportFontPath}
	catalogH := &catalog.Handler{Store: a.store}
	importH := &importer.Handler{Store: a.store, Scraper: scrape.New(a.cfg.ScrapeBaseURL, a.cfg.ScrapeRPS)}
	if a.repo != nil {
		importH.Repo = a.repo
	}

	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("PONG"))
	}).Methods("GET")

	limiter := auth.NewIPRateLimiter(5, 10)
	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/tools/stairs/calc", stairsH.Calculate).Methods("POST")
	api.HandleFunc("/tools/stairs/batch", stairsH.Batch).Methods("POST")
	api.HandleFunc("/tools/stairs/report/pdf", reportH.Generate).Methods("POST")
	api.HandleFunc("/materials/{article}", catalogH.Lookup).Methods("GET")
	api.HandleFunc("/materials", catalogH.Search).Methods("GET")

	if a.repo == nil || a.cfg.TokenKey == "" {
		log.Println("admin routes disabled: DATABASE_URL and TOKEN_KEY are both required")
		return
	}
	authEnv := &auth.Authenv{JWTkey: []byte(a.cfg.TokenKey), Repo: a.repo, SecureCookie: a.cfg.TLS()}
	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authEnv.AuthMiddleware)
	admin.HandleFunc("/catalog/import", importH.Import).Methods("POST")
	admin.HandleFunc("/catalog/scrape", importH.Scrape).Methods("POST")
}

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, *repo.PostgresCatalogRepository) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	db, err := auth.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("База не отвечает: ", err)
	}
	r := repo.NewPostgresCatalogDB(db)
	if err := r.Migrate(ctx); err != nil {
		log.Fatal(err)
	}
	created, err := auth.EnsureAdmin(ctx, r, cfg.AdminLogin, cfg.AdminPassword)
	if err != nil {
		log.Fatal(err)
	}
	if created {
		log.Printf("admin %s created", cfg.AdminLogin)
	}
	return db, r
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	db, catalogRepo := openDB(ctx, cfg)
	if db != nil {
		defer db.Close()
	}

	store := &catalog.Store{}
	var loader catalog.Loader = catalog.WorkbookLoader{Path: cfg.CatalogPath}
	if catalogRepo != nil {
		loader = catalogRepo
	}
	refresher := &catalog.Refresher{Store: store, Loader: loader, Interval: cfg.CatalogRefresh}
	refresher.LoadInitial(ctx)

	wg.Add(1)
	go func() {
		defer wg.Done()
		refresher.Run(ctx)
	}()

	mux := mux.NewRouter()
	HandleList(mux, &app{cfg: cfg, store: store, repo: catalogRepo})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           CORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Printf("Starting server on :%s", cfg.Port)
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Ошибка при остановке сервера: %v", err)
	}
	log.Println("Сервер успешно остановлен")

	wg.Wait()
}
