package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Repository is the application configuration: nested values addressed by
// dot-notation keys such as "app.name" or "mail.port".
//
//	// Laravel: config('mail.port', 587)
//	port := cfg.Int("mail.port", 587)
type Repository struct {
	items map[string]any
}

// New creates a repository holding items.
func New(items map[string]any) *Repository {
	r := &Repository{items: make(map[string]any)}
	for k, v := range items {
		r.Set(k, v)
	}
	return r
}

// Load reads .env (if present) and populates a Repository from environment
// variables. Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Repository {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	env := Env("APP_ENV", "local")
	defaultLevel := "debug"
	if env == "production" {
		defaultLevel = "info"
	}

	return New(map[string]any{
		"app.name":  Env("APP_NAME", "GoLaravel"),
		"app.env":   env,
		"app.debug": EnvBool("APP_DEBUG", true),
		"app.url":   Env("APP_URL", "http://localhost"),
		"app.port":  Env("APP_PORT", "8000"),
		"app.key":   Env("APP_KEY", ""),

		"mail.driver": Env("MAIL_DRIVER", "smtp"),
		"mail.host":   Env("MAIL_HOST", "localhost"),
		"mail.port":   EnvInt("MAIL_PORT", 587),
		"mail.from":   Env("MAIL_FROM_ADDRESS", ""),

		"log.level": Env("LOG_LEVEL", defaultLevel),

		"container.max_depth": EnvInt("CONTAINER_MAX_DEPTH", 0),
	})
}

// LoadYAML merges a YAML file under its base name: config/mail.yaml becomes
// the "mail" key. File values win over values already present.
func (r *Repository) LoadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var items map[string]any
	if err := yaml.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	key := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	existing, _ := r.items[key].(map[string]any)
	r.items[key] = merge(existing, items)
	return nil
}

// LoadDir merges every *.yaml and *.yml file of dir in name order.
func (r *Repository) LoadDir(dir string) error {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	for _, f := range files {
		if err := r.LoadYAML(f); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value at key, or def when it is missing.
func (r *Repository) Get(key string, def any) any {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	return v
}

// Has reports whether key is present.
func (r *Repository) Has(key string) bool {
	_, ok := r.lookup(key)
	return ok
}

// Set stores value at key, creating intermediate sections.
func (r *Repository) Set(key string, value any) {
	parts := strings.Split(key, ".")
	section := r.items
	for _, part := range parts[:len(parts)-1] {
		next, ok := section[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			section[part] = next
		}
		section = next
	}
	section[parts[len(parts)-1]] = value
}

// String returns the value at key formatted as a string.
func (r *Repository) String(key, def string) string {
	v, ok := r.lookup(key)
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Int returns the value at key as an int. Strings are parsed.
func (r *Repository) Int(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// Bool returns the value at key as a bool. Strings are parsed.
func (r *Repository) Bool(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
	}
	return def
}

// All returns the top-level sections.
func (r *Repository) All() map[string]any {
	out := make(map[string]any, len(r.items))
	for k, v := range r.items {
		out[k] = v
	}
	return out
}

func (r *Repository) lookup(key string) (any, bool) {
	var current any = r.items
	for _, part := range strings.Split(key, ".") {
		section, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = section[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func merge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		sub, isMap := v.(map[string]any)
		existing, hasMap := dst[k].(map[string]any)
		if isMap && hasMap {
			dst[k] = merge(existing, sub)
			continue
		}
		dst[k] = v
	}
	return dst
}

// ── env helpers ───────────────────────────────────────────────────────────────

// Env returns a raw env value, falling back to defaultVal.
func Env(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// EnvInt returns an int env value.
func EnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// EnvBool returns a bool env value.
func EnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
