package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/gorilla/mux"
	"golang.org/x/exp/slog"

	"github.com/pacekit/pacer"
	"github.com/pacekit/pacer/gate"
)

type Config struct {
	Port     int           `envconfig:"SERVER_PORT" default:"8080"`
	Interval time.Duration `envconfig:"THROTTLE_INTERVAL" default:"1s"`
	MaxKeys  int64         `envconfig:"MAX_KEYS" default:"65536"`
	RedisURL string        `envconfig:"REDIS_URL" default:""`
}

func main() {
	// Load .env file from given path. We're assuming it's in the current directory.
	loadEnvFile()

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// One throttler per client key, handler served at most once per
	// interval per key.
	keyed, err := pacer.NewKeyed(cfg.Interval, cfg.MaxKeys)
	if err != nil {
		log.Fatalf("Error creating keyed throttler: %v", err)
	}
	defer keyed.Close()

	// This function generates a key that the throttler uses to identify
	// unique clients.
	keyGetter := func(r *http.Request) string {
		if user := r.Header.Get("X-User-ID"); user != "" {
			return user
		}
		// You might want to improve this method to handle IP-forwarding, etc.
		return r.RemoteAddr
	}

	// Create a new router
	r := mux.NewRouter() // or http.NewServeMux()

	// Add the logging middleware first.
	r.Use(LoggingMiddleware)

	// Throttle every route per client.
	r.Use(pacer.HTTPMiddleware(keyed, keyGetter))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Hello, World!"))
	})

	// With Redis configured, /expensive is additionally gated across all
	// instances of this service: one execution per interval cluster-wide.
	if cfg.RedisURL != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisURL, // "localhost:6379"
		})

		sharedGate, err := gate.NewRedisGate(rdb, cfg.Interval, gate.WithPrefix("exampleweb"))
		if err != nil {
			log.Fatalf("Error creating redis gate: %v", err)
		}

		r.HandleFunc("/expensive", func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter, err := sharedGate.Allow(r.Context(), "expensive")
			if err != nil {
				slog.Error("Error checking shared gate", slog.Any("error", err.Error()))
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter/time.Second)))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte("expensive work done"))
		})
	}

	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), r))
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code and writes it to the response.
func (rec *statusRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Create a new status recorder.
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK, // Default to 200 OK if WriteHeader is not called.
		}

		// Continue to the next middleware or handler.
		next.ServeHTTP(recorder, r)

		// Now that the handler has finished, the status code is set.
		log.Printf(
			"Method: %s | Path: %s | StatusCode: %d | RemoteAddr: %s | UserAgent: %s",
			r.Method,
			r.RequestURI,
			recorder.statusCode,
			r.RemoteAddr,
			r.UserAgent(),
		)
	})
}

func loadEnvFile() {
	if _, err := os.Stat(".env"); err == nil {
		// The file exists, now let's try to load it
		if err := godotenv.Load(); err != nil {
			// The file couldn't be loaded, log the error
			log.Fatalf("Error loading .env file: %s", err)
		}
	} else if !os.IsNotExist(err) {
		// There's an error other than "file does not exist", let's log it
		slog.Warn(fmt.Sprintf("Unexpected error looking for .env file: %s", err))
	}
}
