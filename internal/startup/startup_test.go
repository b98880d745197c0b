package startup

import (
	"net/http"
	"os"
	"testing"

	"github.com/gorilla/mux"
)

// clearEnv unsets every variable LoadConfig reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "METRICS_PORT", "METRICS_ENABLED", "LOG_HEALTH_CHECKS",
		"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "YTDLP_PATH",
		"TERMINATE_ON_DISCONNECT", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Port != "3000" {
		t.Errorf("Expected Port=3000, got %s", config.Port)
	}
	if config.MetricsPort != "9090" || !config.MetricsEnabled {
		t.Errorf("Expected metrics enabled on 9090, got %v on %s", config.MetricsEnabled, config.MetricsPort)
	}
	if config.YtDlpPath != "yt-dlp" {
		t.Errorf("Expected YtDlpPath=yt-dlp, got %s", config.YtDlpPath)
	}
	if !config.TerminateOnDisconnect {
		t.Error("Expected TerminateOnDisconnect by default")
	}
	if len(config.CORSAllowedOrigins) != 1 || config.CORSAllowedOrigins[0] != "*" {
		t.Errorf("Expected CORS origins [*], got %v", config.CORSAllowedOrigins)
	}
	if config.CatalogConfigured() {
		t.Error("Expected catalog to be unconfigured without credentials")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("METRICS_PORT", "9191")
	t.Setenv("SPOTIFY_CLIENT_ID", "id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
	t.Setenv("YTDLP_PATH", "/opt/bin/yt-dlp")
	t.Setenv("TERMINATE_ON_DISCONNECT", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,,")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Port != "8081" || config.MetricsPort != "9191" {
		t.Errorf("Unexpected ports: %s, %s", config.Port, config.MetricsPort)
	}
	if !config.CatalogConfigured() {
		t.Error("Expected catalog to be configured")
	}
	if config.YtDlpPath != "/opt/bin/yt-dlp" {
		t.Errorf("Expected custom yt-dlp path, got %s", config.YtDlpPath)
	}
	if config.TerminateOnDisconnect {
		t.Error("Expected TerminateOnDisconnect=false")
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(config.CORSAllowedOrigins) != 2 || config.CORSAllowedOrigins[0] != want[0] || config.CORSAllowedOrigins[1] != want[1] {
		t.Errorf("Expected %v, got %v", want, config.CORSAllowedOrigins)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"non-numeric port", map[string]string{"PORT": "http"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"bad metrics port", map[string]string{"METRICS_PORT": "-1"}},
		{"same ports", map[string]string{"PORT": "9000", "METRICS_PORT": "9000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := LoadConfig(); err == nil {
				t.Error("Expected configuration error")
			}
		})
	}
}

func TestLoadConfigMetricsDisabledSkipsPortCheck(t *testing.T) {
	clearEnv(t)
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("METRICS_PORT", "3000")

	if _, err := LoadConfig(); err != nil {
		t.Errorf("Expected no error with metrics disabled, got %v", err)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_UNSET_VAR",
			defaultValue: "default",
			want:         "default",
		},
		{
			name:         "Returns env value when set",
			key:          "TEST_SET_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
			setEnv:       true,
		},
		{
			name:         "Returns default when env var is empty",
			key:          "TEST_EMPTY_VAR",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"unset uses default true", "", true, true},
		{"unset uses default false", "", false, false},
		{"true", "true", false, true},
		{"false", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"invalid uses default", "yes please", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.envValue)

			if got := getEnvBool("TEST_BOOL", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.envValue, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"", "(not set)"},
		{"abc", "****"},
		{"0123456789abcdef", "********cdef"},
	}

	for _, tt := range tests {
		if got := maskSecret(tt.value); got != tt.want {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestCheckProducer(t *testing.T) {
	if err := checkProducer("definitely-not-a-real-binary-xyz"); err == nil {
		t.Error("Expected error for missing binary")
	}

	// /bin/false exits non-zero, so the version probe fails.
	if err := checkProducer("/bin/false"); err == nil {
		t.Error("Expected error when the version probe fails")
	}
	if ok := LogProducerInit("/bin/false"); ok {
		t.Error("Expected LogProducerInit to report failure")
	}
}

func TestGetRoutes(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}

	router := mux.NewRouter()
	router.HandleFunc("/youtube/{id}", noop).Methods(http.MethodGet).Name("stream")
	router.HandleFunc("/spotify/search", noop).Methods(http.MethodPost)
	router.HandleFunc("/health", noop).Methods(http.MethodGet, http.MethodHead)

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes failed: %v", err)
	}

	if len(routes) != 4 {
		t.Fatalf("Expected 4 routes, got %d: %v", len(routes), routes)
	}
	if routes[0].Path != "/youtube/{id}" || routes[0].Method != http.MethodGet || routes[0].Name != "stream" {
		t.Errorf("Unexpected first route: %+v", routes[0])
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/youtube/{id}", "audio"},
		{"/stream/{id}", "audio"},
		{"/yt/search", "search"},
		{"/spotify/search", "search"},
		{"/readyz", "ops"},
		{"/other/path", "other"},
		{"/", ""},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
