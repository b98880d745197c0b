package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"audio-relay/internal/logging"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration. It is loaded once and never
// modified afterwards.
type Config struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogHealthChecks bool

	// Catalog credentials; either may be empty, which fails catalog
	// searches but not startup.
	SpotifyClientID     string
	SpotifyClientSecret string

	// YtDlpPath is the producer executable.
	YtDlpPath string
	// TerminateOnDisconnect stops the producer when the client leaves.
	TerminateOnDisconnect bool

	CORSAllowedOrigins []string
}

// CatalogConfigured reports whether both catalog credentials are set.
func (c *Config) CatalogConfigured() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	config := &Config{
		Port:                  getEnv("PORT", "3000"),
		MetricsPort:           getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:        getEnvBool("METRICS_ENABLED", true),
		LogHealthChecks:       getEnvBool("LOG_HEALTH_CHECKS", true),
		SpotifyClientID:       os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret:   os.Getenv("SPOTIFY_CLIENT_SECRET"),
		YtDlpPath:             getEnv("YTDLP_PATH", "yt-dlp"),
		TerminateOnDisconnect: getEnvBool("TERMINATE_ON_DISCONNECT", true),
		CORSAllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	logging.Info("  PORT:                     %s", config.Port)
	logging.Info("  METRICS_PORT:             %s", config.MetricsPort)
	logging.Info("  METRICS_ENABLED:          %v", config.MetricsEnabled)
	logging.Info("  YTDLP_PATH:               %s", config.YtDlpPath)
	logging.Info("  TERMINATE_ON_DISCONNECT:  %v", config.TerminateOnDisconnect)
	logging.Info("  SPOTIFY_CLIENT_ID:        %s", maskSecret(config.SpotifyClientID))
	logging.Info("  SPOTIFY_CLIENT_SECRET:    %s", maskSecret(config.SpotifyClientSecret))
	logging.Info("  CORS_ALLOWED_ORIGINS:     %s", strings.Join(config.CORSAllowedOrigins, ", "))
	logging.Info("  LOG_HEALTH_CHECKS:        %v", config.LogHealthChecks)
	logging.Info("  LOG_LEVEL:                %s", logging.GetLevel())

	if err := validatePort("PORT", config.Port); err != nil {
		return nil, err
	}
	if config.MetricsEnabled {
		if err := validatePort("METRICS_PORT", config.MetricsPort); err != nil {
			return nil, err
		}
		if config.MetricsPort == config.Port {
			return nil, fmt.Errorf("METRICS_PORT must differ from PORT (both %s)", config.Port)
		}
	}

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Audio streaming: ENABLED")
	logging.Info("    Title lookup:    ENABLED")
	logging.Info("    Catalog search:  %s", enabledString(config.CatalogConfigured()))
	logging.Info("    Metrics:         %s", enabledString(config.MetricsEnabled))

	if !config.CatalogConfigured() {
		logging.Warn("  Catalog credentials missing, /spotify/search will return errors")
	}

	return config, nil
}

func validatePort(name, value string) error {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid %s %q: must be a number between 1 and 65535", name, value)
	}
	return nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// maskSecret hides all but the last four characters of a credential.
func maskSecret(value string) string {
	if value == "" {
		return "(not set)"
	}
	if len(value) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + value[len(value)-4:]
}

// LogProducerInit logs the producer binary check. The server still starts
// when the check fails; streams and lookups will then fail individually.
func LogProducerInit(binary string) bool {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PRODUCER INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	if err := checkProducer(binary); err != nil {
		logging.Warn("  yt-dlp check failed: %v", err)
		logging.Warn("  Audio streaming and title lookup will not work")
		return false
	}
	logging.Info("  [OK] yt-dlp is available")
	return true
}

// LogCatalogInit logs catalog client initialization
func LogCatalogInit(configured bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("CATALOG INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	if configured {
		logging.Info("  [OK] Catalog client ready")
	} else {
		logging.Info("  Catalog client ready without credentials")
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		logging.Debug("")

		groups := make(map[string][]RouteInfo)
		for _, route := range routes {
			prefix := getRouteGroup(route.Path)
			groups[prefix] = append(groups[prefix], route)
		}

		groupKeys := make([]string, 0, len(groups))
		for k := range groups {
			groupKeys = append(groupKeys, k)
		}
		sort.Strings(groupKeys)

		for _, group := range groupKeys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}

			for _, route := range groups[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
			logging.Debug("")
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	switch first {
	case "youtube", "stream":
		return "audio"
	case "yt", "spotify":
		return "search"
	case "health", "healthz", "livez", "readyz", "version":
		return "ops"
	}
	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Try:")
	logging.Info("    http://localhost:%s/youtube/dQw4w9WgXcQ", config.Port)
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ___             ___         ____       __
   /   | __  ______/ (_)___    / __ \___  / /___ ___  __
  / /| |/ / / / __  / / __ \  / /_/ / _ \/ / __ '/ / / /
 / ___ / /_/ / /_/ / / /_/ / / _, _/  __/ / /_/ / /_/ /
/_/  |_\__,_/\__,_/_/\____/ /_/ |_|\___/_/\__,_/\__, /
                                               /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func checkProducer(binary string) error {
	path, err := exec.LookPath(binary)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", binary)
	}
	logging.Debug("  yt-dlp path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return fmt.Errorf("failed to get yt-dlp version: %w", err)
	}

	lines := strings.Split(string(output), "\n")
	logging.Info("  yt-dlp version: %s", strings.TrimSpace(lines[0]))

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvList splits a comma-separated variable, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
