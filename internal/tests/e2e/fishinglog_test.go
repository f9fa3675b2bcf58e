//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/EduNet2023/NovoApkPesca/config"
	"github.com/EduNet2023/NovoApkPesca/internal/server"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const (
	serverPort = 18080
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	configureTestEnv()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/api/health"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestFishingLogLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	username := fmt.Sprintf("angler_%d", time.Now().UnixNano())
	password := "reelstrong42!"

	token, err := registerUser(t, baseURL, username, password)
	if err != nil {
		t.Fatalf("register user: %v", err)
	}

	location, err := createLocation(t, baseURL, token, "Lake Norville")
	if err != nil {
		t.Fatalf("create location: %v", err)
	}
	if location.ID == "" {
		t.Fatalf("expected location ID to be set")
	}

	date := time.Now().AddDate(0, 0, -3).Format("2006-01-02")
	session, err := createSession(t, baseURL, token, map[string]any{
		"location_id": location.ID,
		"date":        date,
		"start_time":  "20:00",
		"end_time":    "23:30",
		"notes":       "calm evening, light chop",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.DurationMinutes != 210 {
		t.Fatalf("unexpected session duration: %d", session.DurationMinutes)
	}
	if session.LocationName != "Lake Norville" {
		t.Fatalf("unexpected location name: %q", session.LocationName)
	}

	caught, err := createCatch(t, baseURL, token, map[string]any{
		"session_id": session.ID,
		"species":    "Largemouth Bass",
		"weight_kg":  2.5,
		"bait_used":  "Nightcrawler",
	})
	if err != nil {
		t.Fatalf("create catch: %v", err)
	}

	detail, err := getSessionDetail(t, baseURL, token, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(detail.Catches) != 1 || detail.Catches[0].ID != caught.ID {
		t.Fatalf("expected session detail to embed the catch, got %+v", detail.Catches)
	}
	if detail.CatchesCount != 1 {
		t.Fatalf("unexpected catches_count: %d", detail.CatchesCount)
	}

	photo := []byte("\xff\xd8\xff\xe0 fake jpeg body for upload test")
	withPhoto, err := uploadPhoto(t, baseURL, token, caught.ID, photo)
	if err != nil {
		t.Fatalf("upload photo: %v", err)
	}
	if withPhoto.PhotoURL == nil || *withPhoto.PhotoURL == "" {
		t.Fatalf("expected photo_url to be set after upload")
	}

	downloaded, contentType, err := fetchPhoto(t, baseURL, token, caught.ID)
	if err != nil {
		t.Fatalf("fetch photo: %v", err)
	}
	if contentType != "image/jpeg" {
		t.Fatalf("unexpected photo content type: %q", contentType)
	}
	if !bytes.Equal(downloaded, photo) {
		t.Fatalf("downloaded photo does not match upload")
	}

	overview, err := getOverview(t, baseURL, token)
	if err != nil {
		t.Fatalf("get overview: %v", err)
	}
	if overview.TotalSessions != 1 || overview.TotalCatches != 1 || overview.TotalLocations != 1 {
		t.Fatalf("unexpected overview totals: %+v", overview)
	}
	if overview.KeptCount != 1 || overview.ReleasedCount != 0 {
		t.Fatalf("unexpected kept/released split: %+v", overview)
	}
	if overview.TotalWeightKg != 2.5 {
		t.Fatalf("unexpected total weight: %v", overview.TotalWeightKg)
	}
	if overview.TotalHours != 3.5 {
		t.Fatalf("unexpected total hours: %v", overview.TotalHours)
	}

	if err := expectLocationDeleteRefused(t, baseURL, token, location.ID); err != nil {
		t.Fatalf("location delete guard: %v", err)
	}

	updated, err := updateSession(t, baseURL, token, session.ID, map[string]any{
		"notes": "switched to topwater after dark",
	})
	if err != nil {
		t.Fatalf("update session: %v", err)
	}
	if updated.DurationMinutes != 210 {
		t.Fatalf("notes-only update changed duration: %d", updated.DurationMinutes)
	}

	if err := deleteSession(t, baseURL, token, session.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if err := expectCatchNotFound(t, baseURL, token, caught.ID); err != nil {
		t.Fatalf("expected catch to be gone with its session: %v", err)
	}

	if err := deleteAccount(t, baseURL, token); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if err := expectUnauthorized(t, baseURL, token); err != nil {
		t.Fatalf("expected token to be rejected after account deletion: %v", err)
	}
}

func TestOvernightSessionDuration(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	username := fmt.Sprintf("nightowl_%d", time.Now().UnixNano())

	token, err := registerUser(t, baseURL, username, "reelstrong42!")
	if err != nil {
		t.Fatalf("register user: %v", err)
	}

	location, err := createLocation(t, baseURL, token, "Pine River")
	if err != nil {
		t.Fatalf("create location: %v", err)
	}

	session, err := createSession(t, baseURL, token, map[string]any{
		"location_id": location.ID,
		"date":        time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
		"start_time":  "22:00",
		"end_time":    "02:00",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.DurationMinutes != 240 {
		t.Fatalf("unexpected overnight duration: %d", session.DurationMinutes)
	}
}

type authResponse struct {
	Token string `json:"token"`
}

type locationPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type catchPayload struct {
	ID       string  `json:"id"`
	Species  string  `json:"species"`
	PhotoURL *string `json:"photo_url"`
}

type sessionPayload struct {
	ID              string         `json:"id"`
	LocationID      string         `json:"location_id"`
	LocationName    string         `json:"location_name"`
	DurationMinutes int            `json:"duration_minutes"`
	CatchesCount    int            `json:"catches_count"`
	Catches         []catchPayload `json:"catches"`
}

type overviewPayload struct {
	TotalSessions  int     `json:"total_sessions"`
	TotalCatches   int     `json:"total_catches"`
	TotalLocations int     `json:"total_locations"`
	ReleasedCount  int     `json:"released_count"`
	KeptCount      int     `json:"kept_count"`
	TotalWeightKg  float64 `json:"total_weight_kg"`
	TotalHours     float64 `json:"total_hours"`
}

func doJSON(method, url, token string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return http.DefaultClient.Do(req)
}

func decodeInto(resp *http.Response, wantStatus int, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func registerUser(t *testing.T, baseURL, username, password string) (string, error) {
	t.Helper()

	resp, err := doJSON(http.MethodPost, baseURL+"/api/auth/register", "", map[string]string{
		"username": username,
		"email":    fmt.Sprintf("%s@example.com", username),
		"password": password,
	})
	if err != nil {
		return "", err
	}

	var parsed authResponse
	if err := decodeInto(resp, http.StatusCreated, &parsed); err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	if parsed.Token == "" {
		return "", fmt.Errorf("missing token in register response")
	}
	return parsed.Token, nil
}

func createLocation(t *testing.T, baseURL, token, name string) (locationPayload, error) {
	t.Helper()

	resp, err := doJSON(http.MethodPost, baseURL+"/api/locations", token, map[string]any{
		"name":      name,
		"latitude":  38.9707,
		"longitude": -94.1213,
	})
	if err != nil {
		return locationPayload{}, err
	}

	var parsed struct {
		Location locationPayload `json:"location"`
	}
	if err := decodeInto(resp, http.StatusCreated, &parsed); err != nil {
		return locationPayload{}, fmt.Errorf("create location: %w", err)
	}
	return parsed.Location, nil
}

func createSession(t *testing.T, baseURL, token string, payload map[string]any) (sessionPayload, error) {
	t.Helper()

	resp, err := doJSON(http.MethodPost, baseURL+"/api/sessions", token, payload)
	if err != nil {
		return sessionPayload{}, err
	}

	var parsed struct {
		Session sessionPayload `json:"session"`
	}
	if err := decodeInto(resp, http.StatusCreated, &parsed); err != nil {
		return sessionPayload{}, fmt.Errorf("create session: %w", err)
	}
	return parsed.Session, nil
}

func updateSession(t *testing.T, baseURL, token, id string, payload map[string]any) (sessionPayload, error) {
	t.Helper()

	resp, err := doJSON(http.MethodPut, baseURL+"/api/sessions/"+id, token, payload)
	if err != nil {
		return sessionPayload{}, err
	}

	var parsed struct {
		Session sessionPayload `json:"session"`
	}
	if err := decodeInto(resp, http.StatusOK, &parsed); err != nil {
		return sessionPayload{}, fmt.Errorf("update session: %w", err)
	}
	return parsed.Session, nil
}

func getSessionDetail(t *testing.T, baseURL, token, id string) (sessionPayload, error) {
	t.Helper()

	resp, err := doJSON(http.MethodGet, baseURL+"/api/sessions/"+id, token, nil)
	if err != nil {
		return sessionPayload{}, err
	}

	var parsed struct {
		Session sessionPayload `json:"session"`
	}
	if err := decodeInto(resp, http.StatusOK, &parsed); err != nil {
		return sessionPayload{}, fmt.Errorf("get session: %w", err)
	}
	return parsed.Session, nil
}

func deleteSession(t *testing.T, baseURL, token, id string) error {
	t.Helper()

	resp, err := doJSON(http.MethodDelete, baseURL+"/api/sessions/"+id, token, nil)
	if err != nil {
		return err
	}
	return decodeInto(resp, http.StatusOK, nil)
}

func createCatch(t *testing.T, baseURL, token string, payload map[string]any) (catchPayload, error) {
	t.Helper()

	resp, err := doJSON(http.MethodPost, baseURL+"/api/catches", token, payload)
	if err != nil {
		return catchPayload{}, err
	}

	var parsed struct {
		Catch catchPayload `json:"catch"`
	}
	if err := decodeInto(resp, http.StatusCreated, &parsed); err != nil {
		return catchPayload{}, fmt.Errorf("create catch: %w", err)
	}
	return parsed.Catch, nil
}

func expectCatchNotFound(t *testing.T, baseURL, token, id string) error {
	t.Helper()

	resp, err := doJSON(http.MethodGet, baseURL+"/api/catches/"+id, token, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("expected 404, got %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func uploadPhoto(t *testing.T, baseURL, token, catchID string, photo []byte) (catchPayload, error) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="photo"; filename="bass.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	if err != nil {
		return catchPayload{}, err
	}
	if _, err := part.Write(photo); err != nil {
		return catchPayload{}, err
	}
	if err := writer.Close(); err != nil {
		return catchPayload{}, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/catches/"+catchID+"/photo", &body)
	if err != nil {
		return catchPayload{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return catchPayload{}, err
	}

	var parsed struct {
		Catch catchPayload `json:"catch"`
	}
	if err := decodeInto(resp, http.StatusCreated, &parsed); err != nil {
		return catchPayload{}, fmt.Errorf("upload photo: %w", err)
	}
	return parsed.Catch, nil
}

func fetchPhoto(t *testing.T, baseURL, token, catchID string) ([]byte, string, error) {
	t.Helper()

	resp, err := doJSON(http.MethodGet, baseURL+"/api/catches/"+catchID+"/photo", token, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("fetch photo status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func getOverview(t *testing.T, baseURL, token string) (overviewPayload, error) {
	t.Helper()

	resp, err := doJSON(http.MethodGet, baseURL+"/api/stats/overview", token, nil)
	if err != nil {
		return overviewPayload{}, err
	}

	var parsed struct {
		Overview overviewPayload `json:"overview"`
	}
	if err := decodeInto(resp, http.StatusOK, &parsed); err != nil {
		return overviewPayload{}, fmt.Errorf("get overview: %w", err)
	}
	return parsed.Overview, nil
}

func expectLocationDeleteRefused(t *testing.T, baseURL, token, id string) error {
	t.Helper()

	resp, err := doJSON(http.MethodDelete, baseURL+"/api/locations/"+id, token, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("expected 400 while sessions exist, got %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return err
	}
	if parsed.Error == "" {
		return fmt.Errorf("expected error body on refused delete")
	}
	return nil
}

func deleteAccount(t *testing.T, baseURL, token string) error {
	t.Helper()

	resp, err := doJSON(http.MethodDelete, baseURL+"/api/auth/me", token, nil)
	if err != nil {
		return err
	}
	return decodeInto(resp, http.StatusOK, nil)
}

func expectUnauthorized(t *testing.T, baseURL, token string) error {
	t.Helper()

	resp, err := doJSON(http.MethodGet, baseURL+"/api/auth/me", token, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("expected 401, got %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func waitForPostgres(ctx context.Context) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func runMigrations(root string) error {
	cfg := config.LoadConfig()
	dsn := buildPostgresURL(cfg)
	migrationsPath := filepath.Join(root, "internal", "db", "migrations")
	migrationsURL := "file://" + migrationsPath

	migrator, err := migrate.New(migrationsURL, dsn)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func buildPostgresURL(cfg config.Config) string {
	sslmode := "disable"
	if cfg.Database.UseSSL {
		sslmode = "require"
	}
	host := fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port)
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		host,
		cfg.Database.DBName,
		sslmode,
	)
}

func configureTestEnv() {
	_ = os.Setenv("JWT_SECRET", "test-secret")
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "fishinglog")
	_ = os.Setenv("DB_PASSWORD", "fishinglog")
	_ = os.Setenv("DB_NAME", "fishinglog_db")
	_ = os.Setenv("DB_SSL", "false")
	_ = os.Setenv("STORAGE_BACKEND", "minio")
	_ = os.Setenv("MINIO_ENDPOINT", "localhost:9000")
	_ = os.Setenv("MINIO_ACCESS_KEY", "minioadmin")
	_ = os.Setenv("MINIO_SECRET_KEY", "minioadmin")
	_ = os.Setenv("MINIO_BUCKET", "fishinglog-photos")
}

func startServer() (*server.Server, error) {
	cfg := config.LoadConfig()
	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
