package main

import (
	"database/sql"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/openconsent/cookie-consent-service/internal/consent/handler"
	"github.com/openconsent/cookie-consent-service/internal/system/config"
	"github.com/openconsent/cookie-consent-service/internal/system/constants"
	"github.com/openconsent/cookie-consent-service/internal/system/database/migrations"
	"github.com/openconsent/cookie-consent-service/internal/system/log"
)

const configFile = "config/deployment.yaml"

func main() {
	home := getServiceHome()

	envFiles, _ := filepath.Glob(filepath.Join(home, "config", "*.env"))
	_ = godotenv.Load(envFiles...)

	cfg, err := config.LoadConfig(home, configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitializeRuntime(home, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize runtime: %v\n", err)
		os.Exit(1)
	}

	if err := log.Init(cfg.Log.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := log.GetLogger()

	if err := migrateDatabase(cfg); err != nil {
		logger.Fatal("Failed to migrate database schema", log.Error(err))
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Addr.Host, cfg.Addr.Port)
	mux := enableCORS(initMultiplexer(), cfg.Auth.CORSAllowedOrigins)

	ln, err := net.Listen("tcp", serverAddr)
	if err != nil {
		logger.Fatal("Failed to start listener", log.Error(err))
	}
	logger.Info("Cookie consent service started", log.String("addr", serverAddr))

	server := &http.Server{Handler: mux}
	if err := server.Serve(ln); err != nil {
		logger.Fatal("Failed to serve requests", log.Error(err))
	}
}

// migrateDatabase brings the consent_record schema to the latest version.
func migrateDatabase(cfg *config.Config) error {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DataSource.Hostname, cfg.DataSource.Port, cfg.DataSource.Username,
		cfg.DataSource.Password, cfg.DataSource.Name, cfg.DataSource.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return err
	}
	return migrations.MigrateUp(db)
}

// initMultiplexer initializes the HTTP multiplexer and registers the consent routes.
func initMultiplexer() *http.ServeMux {

	mux := http.NewServeMux()
	consentHandler := handler.NewConsentHandler()

	mux.HandleFunc("POST "+constants.ApiBasePath+"/consent", consentHandler.SaveConsent)
	mux.HandleFunc("DELETE "+constants.ApiBasePath+"/consent", consentHandler.RetractConsent)
	mux.HandleFunc("GET "+constants.ApiBasePath+"/consent", consentHandler.GetConsentStatus)
	mux.HandleFunc("GET "+constants.ApiBasePath+"/consent-records/", consentHandler.GetConsentRecord)

	return mux
}

func enableCORS(next http.Handler, allowedOrigins []string) http.Handler {
	allowed := map[string]bool{}
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getServiceHome() string {

	homeFlag := flag.String("home", "", "Path to the service installation root")
	flag.Parse()

	if *homeFlag != "" {
		return *homeFlag
	}
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get working directory: %v\n", err)
		os.Exit(1)
	}
	return dir
}
