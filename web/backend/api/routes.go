package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"smartfile/internal/command"
	"smartfile/internal/config"
	"smartfile/internal/runner"
	"smartfile/web/backend/auth"
	"smartfile/web/backend/middleware"
	"smartfile/web/backend/websocket"

	"gopkg.in/yaml.v3"
)

// maxOperationBytes bounds a single operation request body.
const maxOperationBytes = 1 << 20

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse contains JWT token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// UserInfo contains user details
type UserInfo struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// ErrorResponse represents error message
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// LoginHandler handles user authentication
func LoginHandler(jwtManager *auth.JWTManager) http.HandlerFunc {
	adminPassword := os.Getenv("SMARTFILE_ADMIN_PASSWORD")
	if adminPassword == "" {
		// CRITICAL: Replace with real authentication against a secure user
		// database. The fallback exists for local development only.
		adminPassword = "changeme"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if req.Username != "admin" || req.Password != adminPassword {
			respondError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		roles := []string{auth.RoleAdmin}

		token, err := jwtManager.GenerateToken("user-id-1", req.Username, roles)
		if err != nil {
			respondError(w, "failed to generate token", http.StatusInternalServerError)
			return
		}

		response := LoginResponse{
			Token:     token,
			ExpiresAt: time.Now().Add(24 * time.Hour),
			User: UserInfo{
				Username: req.Username,
				Roles:    roles,
			},
		}

		respondJSON(w, response, http.StatusOK)
	}
}

// HealthHandler returns server health status
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	// Middleware should set these; verify for this critical endpoint
	if w.Header().Get("X-Content-Type-Options") == "" {
		w.Header().Set("X-Content-Type-Options", "nosniff")
	}
	if w.Header().Get("X-Frame-Options") == "" {
		w.Header().Set("X-Frame-Options", "DENY")
	}
	if w.Header().Get("Strict-Transport-Security") == "" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// ExecuteOperationHandler handles POST /api/v1/operations. The body is a
// single operation command in the same JSON shape the engine reads from
// stdin; the structured result is returned whether or not the operation
// succeeded.
func ExecuteOperationHandler(run *runner.Runner, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r)
		if !ok || !auth.HasPermission(claims.Roles, auth.PermissionExecuteOperations) {
			respondError(w, "unauthorized", http.StatusForbidden)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxOperationBytes))
		if err != nil {
			respondError(w, "failed to read request body", http.StatusBadRequest)
			return
		}

		cmd, err := command.Decode(body)
		if err != nil {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}

		result := run.RunOnce(cmd)
		if hub != nil {
			hub.Publish(result)
		}

		respondJSON(w, result, http.StatusOK)
	}
}

// GetConfigHandler returns current configuration
func GetConfigHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok || !auth.HasPermission(claims.Roles, auth.PermissionViewConfig) {
		respondError(w, "unauthorized", http.StatusForbidden)
		return
	}

	// Load returns defaults when the file is missing, so a fresh host
	// still gets a usable response
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		respondError(w, fmt.Sprintf("failed to load config: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, cfg, http.StatusOK)
}

// UpdateConfigHandler updates configuration
func UpdateConfigHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok || !auth.HasPermission(claims.Roles, auth.PermissionEditConfig) {
		respondError(w, "unauthorized", http.StatusForbidden)
		return
	}

	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, "invalid config format", http.StatusBadRequest)
		return
	}

	yamlData, err := yaml.Marshal(&cfg)
	if err != nil {
		respondError(w, fmt.Sprintf("failed to marshal config: %v", err), http.StatusInternalServerError)
		return
	}

	// Round-trip through a temp file so the same validation path that
	// guards startup also guards the API
	if err := validateYAML(yamlData); err != nil {
		respondError(w, fmt.Sprintf("invalid config: %v", err), http.StatusBadRequest)
		return
	}

	configDir := "/etc/smartfile"
	if err := os.MkdirAll(configDir, 0755); err != nil {
		respondError(w, fmt.Sprintf("failed to create config directory: %v", err), http.StatusInternalServerError)
		return
	}

	if err := os.WriteFile(config.DefaultPath, yamlData, 0644); err != nil {
		respondError(w, fmt.Sprintf("failed to write config file: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]string{
		"message": "config updated successfully; the engine reads it on next start",
	}, http.StatusOK)
}

// ValidateConfigHandler validates configuration without applying
func ValidateConfigHandler(w http.ResponseWriter, r *http.Request) {
	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondJSON(w, map[string]interface{}{
			"valid": false,
			"error": fmt.Sprintf("invalid config format: %v", err),
		}, http.StatusBadRequest)
		return
	}

	yamlData, err := yaml.Marshal(&cfg)
	if err != nil {
		respondJSON(w, map[string]interface{}{
			"valid": false,
			"error": fmt.Sprintf("failed to marshal config: %v", err),
		}, http.StatusBadRequest)
		return
	}

	if err := validateYAML(yamlData); err != nil {
		respondJSON(w, map[string]interface{}{
			"valid": false,
			"error": fmt.Sprintf("invalid config: %v", err),
		}, http.StatusBadRequest)
		return
	}

	respondJSON(w, map[string]bool{"valid": true}, http.StatusOK)
}

// validateYAML writes the config to a temp file and loads it back through
// the standard validation path.
func validateYAML(yamlData []byte) error {
	tmpFile, err := os.CreateTemp("", "smartfile-config-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlData); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	tmpFile.Close()

	_, err = config.Load(tmpFile.Name())
	return err
}

// Helper functions
func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    status,
		Message: message,
	}, status)
}
