package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fra-atlas/atlas-backend/internal/ai"
	"github.com/fra-atlas/atlas-backend/internal/analysis"
	"github.com/fra-atlas/atlas-backend/internal/config"
	"github.com/fra-atlas/atlas-backend/internal/dto"
	"github.com/fra-atlas/atlas-backend/internal/handlers"
	"github.com/fra-atlas/atlas-backend/internal/insights"
	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/fra-atlas/atlas-backend/internal/services"
	"github.com/fra-atlas/atlas-backend/internal/storage"
	"github.com/fra-atlas/atlas-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "routes-test-secret"

type failingAnalyzer struct{}

func (failingAnalyzer) Send(context.Context, string, *ai.Attachment) (string, error) {
	return "", errors.New("connection refused")
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:          testSecret,
		JWTExpiry:          time.Hour,
		RateLimitPerMinute: 1000,
		AuthRateLimit:      1000,
	}

	s := store.NewMemoryStore()
	docs, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	analyzer := failingAnalyzer{}
	pipeline := analysis.NewPipeline(docs, s, analyzer, time.Second)

	authService := services.NewAuthService(s, cfg)
	claimService := services.NewClaimService(s, pipeline)
	dashboardService := services.NewDashboardService(s, insights.NewEngine(analyzer, time.Second, nil))
	reportService := services.NewReportService(s)

	app := fiber.New()
	Setup(app, cfg, authService,
		handlers.NewAuthHandler(authService),
		handlers.NewClaimHandler(claimService),
		handlers.NewDashboardHandler(dashboardService, reportService),
		handlers.NewHealthHandler(nil, false),
	)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func register(t *testing.T, app *fiber.App, email string, role models.Role) *dto.AuthResponse {
	t.Helper()
	resp, body := do(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Email: email, Password: "password123", FullName: "Test " + string(role), Role: string(role),
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register %s: %d %s", email, resp.StatusCode, body)
	}
	var out dto.AuthResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode auth: %v", err)
	}
	return &out
}

func claimBody(title string) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "Grazing and minor forest produce",
		"location": map[string]any{
			"lat": 21.2, "lng": 81.6, "address": "Forest block 7",
			"state": "Chhattisgarh", "district": "Bastar", "village": "Kondagaon",
		},
		"user_id": uuid.NewString(),
	}
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}

func TestClaimLifecycleEndToEnd(t *testing.T) {
	app := newTestApp(t)

	u1 := register(t, app, "u1@example.org", models.RoleCommunityUser)
	u2 := register(t, app, "u2@example.org", models.RoleCommunityUser)
	o1 := register(t, app, "o1@example.org", models.RoleDistrictOfficer)

	resp, body := do(t, app, http.MethodPost, "/api/claims", u1.AccessToken, claimBody("C1"))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create claim: %d %s", resp.StatusCode, body)
	}
	c1 := decode[models.Claim](t, body)
	if c1.OwnerID != u1.User.ID || c1.Status != models.StatusPending {
		t.Fatalf("unexpected claim: %+v", c1)
	}

	resp, body = do(t, app, http.MethodGet, "/api/claims/"+c1.ID.String(), u2.AccessToken, nil)
	if resp.StatusCode != fiber.StatusForbidden || decode[dto.ErrorResponse](t, body).Reason != "access_denied" {
		t.Fatalf("other community user read: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, http.MethodPut, "/api/claims/"+c1.ID.String()+"/status", u1.AccessToken, map[string]any{"status": "approved"})
	if resp.StatusCode != fiber.StatusForbidden || decode[dto.ErrorResponse](t, body).Reason != "insufficient_permissions" {
		t.Fatalf("owner status update: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, http.MethodGet, "/api/claims", u2.AccessToken, nil)
	if resp.StatusCode != fiber.StatusOK || len(decode[[]models.Claim](t, body)) != 0 {
		t.Fatalf("u2 should see no claims: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, http.MethodPut, "/api/claims/"+c1.ID.String()+"/status", o1.AccessToken,
		map[string]any{"status": "approved", "officer_notes": "verified with gram sabha"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("officer approval: %d %s", resp.StatusCode, body)
	}
	approved := decode[models.Claim](t, body)
	if approved.Status != models.StatusApproved || approved.ReviewedBy == nil || *approved.ReviewedBy != o1.User.ID {
		t.Fatalf("approval not recorded: %+v", approved)
	}

	resp, body = do(t, app, http.MethodGet, "/api/claims/"+c1.ID.String(), u1.AccessToken, nil)
	if resp.StatusCode != fiber.StatusOK || decode[models.Claim](t, body).Status != models.StatusApproved {
		t.Fatalf("owner should see approved claim: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, http.MethodGet, "/api/dashboard/stats", u1.AccessToken, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("dashboard: %d %s", resp.StatusCode, body)
	}
	stats := decode[dto.DashboardResponse](t, body)
	if stats.Statistics.TotalClaims != 1 || stats.Statistics.ApprovedClaims != 1 || stats.Statistics.ApprovalRate != 100 {
		t.Fatalf("unexpected statistics: %+v", stats.Statistics)
	}
	if !strings.HasPrefix(stats.AIInsights, "Insights generation failed") {
		t.Fatalf("expected degraded narrative, got %q", stats.AIInsights)
	}

	resp, body = do(t, app, http.MethodGet, "/api/reports/summary", o1.AccessToken, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("summary: %d %s", resp.StatusCode, body)
	}
	report := decode[dto.SummaryReport](t, body)
	if len(report.Data) != 1 || report.Data[0].State == nil || *report.Data[0].State != "Chhattisgarh" || report.Data[0].Approved != 1 {
		t.Fatalf("unexpected summary: %s", body)
	}
}

func TestUploadSucceedsWhenAnalyzerIsDown(t *testing.T) {
	app := newTestApp(t)
	u1 := register(t, app, "owner@example.org", models.RoleCommunityUser)

	_, body := do(t, app, http.MethodPost, "/api/claims", u1.AccessToken, claimBody("C1"))
	c1 := decode[models.Claim](t, body)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "patta.pdf")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	part.Write([]byte("%PDF-1.4 fake"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/claims/"+c1.ID.String()+"/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+u1.AccessToken)
	resp, body := send(t, app, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("upload: %d %s", resp.StatusCode, body)
	}
	up := decode[dto.UploadResponse](t, body)
	if !up.AnalysisDegraded || !strings.HasPrefix(up.AIAnalysis, "AI analysis failed") || up.FilePath == "" {
		t.Fatalf("unexpected upload response: %+v", up)
	}

	_, body = do(t, app, http.MethodGet, "/api/claims/"+c1.ID.String(), u1.AccessToken, nil)
	if docs := decode[models.Claim](t, body).Documents; len(docs) != 1 || docs[0] != up.FilePath {
		t.Fatalf("expected one document reference, got %v", docs)
	}
}

func TestUploadToMissingClaim(t *testing.T) {
	app := newTestApp(t)
	u1 := register(t, app, "owner@example.org", models.RoleCommunityUser)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "a.jpg")
	part.Write([]byte{0xff, 0xd8})
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/claims/"+uuid.NewString()+"/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+u1.AccessToken)
	if resp, body := send(t, app, req); resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d %s", resp.StatusCode, body)
	}
}

func TestTokenFailures(t *testing.T) {
	app := newTestApp(t)
	u1 := register(t, app, "u1@example.org", models.RoleCommunityUser)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": u1.User.ID.String(),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": u1.User.ID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	forgedToken, _ := forged.SignedString([]byte("some-other-secret"))

	ghost := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	ghostToken, _ := ghost.SignedString([]byte(testSecret))

	cases := []struct {
		name, token, want string
	}{
		{"missing", "", "missing or malformed token"},
		{"expired", expiredToken, "token expired"},
		{"forged", forgedToken, "invalid token"},
		{"unknown user", ghostToken, "user no longer exists"},
	}
	for _, tc := range cases {
		resp, body := do(t, app, http.MethodGet, "/api/claims", tc.token, nil)
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", tc.name, resp.StatusCode)
		}
		if msg := decode[dto.ErrorResponse](t, body).Message; !strings.Contains(msg, tc.want) {
			t.Fatalf("%s: unexpected message %q", tc.name, msg)
		}
	}

	if resp, _ := do(t, app, http.MethodGet, "/api/auth/me", u1.AccessToken, nil); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("valid token rejected: %d", resp.StatusCode)
	}
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	resp, body := do(t, app, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email": "x@example.org", "password": "password123", "full_name": "X", "role": "Admin",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("unknown role: %d %s", resp.StatusCode, body)
	}

	register(t, app, "dup@example.org", models.RoleNGO)
	resp, _ = do(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Email: "dup@example.org", Password: "password123", FullName: "Dup", Role: string(models.RoleNGO),
	})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("duplicate email: %d", resp.StatusCode)
	}

	resp, _ = do(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "dup@example.org", Password: "nope-nope"})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("bad login: %d", resp.StatusCode)
	}
}

func TestReportExportDownload(t *testing.T) {
	app := newTestApp(t)
	m := register(t, app, "m@example.org", models.RoleMinistry)

	resp, body := do(t, app, http.MethodGet, "/api/reports/summary/export", m.AccessToken, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("export: %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), ".xlsx") || len(body) == 0 {
		t.Fatalf("expected an xlsx attachment")
	}
}
