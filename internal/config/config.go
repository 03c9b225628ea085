package config

import (
	"os"
	"strconv"
	"strings"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	// Embedding backend: "local" (deterministic, no network) or "ollama".
	EmbedProvider string
	OllamaBaseURL string
	OllamaModel   string
	EmbedDims     int

	// Embedding cache (sqlite by default).
	CacheEnabled bool
	DBDriver     string
	DBDSN        string

	// Criterion evaluation fan-out; 1 disables the worker pool.
	GradeWorkers int

	// Upload cap per document, bytes.
	MaxUploadBytes int64

	EnableLocalAuth bool
	AdminUser       string
	AdminPassHash   string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		Mode:     mode,
		HTTPAddr: addr,

		EmbedProvider: envOr("EMBED_PROVIDER", "local"),
		OllamaBaseURL: envOr("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   envOr("OLLAMA_MODEL", "nomic-embed-text"),
		EmbedDims:     envInt("EMBED_DIMS", 0),

		CacheEnabled: envBool("CACHE_ENABLED", true),
		DBDriver:     envOr("DB_DRIVER", "sqlite"),
		DBDSN:        envOr("DB_DSN", ""),

		GradeWorkers: envInt("GRADE_WORKERS", 1),

		MaxUploadBytes: int64(envInt("MAX_UPLOAD_BYTES", 5*1024*1024)),

		EnableLocalAuth: envBool("ENABLE_LOCAL_AUTH", false),
		AdminUser:       envOr("ADMIN_USER", "admin"),
		AdminPassHash:   envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", ""),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
