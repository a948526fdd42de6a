package tests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/smolci/StudyBuddy/backend/config"
	"github.com/smolci/StudyBuddy/backend/controllers"
	"github.com/smolci/StudyBuddy/backend/models"
	"github.com/smolci/StudyBuddy/backend/routes"
	"github.com/smolci/StudyBuddy/backend/timer"
	"github.com/smolci/StudyBuddy/backend/utils"
)

var (
	app      *fiber.App
	db       *gorm.DB
	cfg      *config.Config
	jwtToken string
	userID   uint
)

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	teardown()
	os.Exit(code)
}

// requireDB skips the suite when no test database is reachable, so the
// package still passes in environments without Postgres.
func requireDB(t *testing.T) {
	t.Helper()
	if app == nil {
		t.Skip("test database not available")
	}
}

func setup() {
	cfg = &config.Config{
		DBHost:     getEnv("TEST_DB_HOST", "localhost"),
		DBPort:     getEnv("TEST_DB_PORT", "5432"),
		DBUser:     getEnv("TEST_DB_USER", "postgres"),
		DBPassword: getEnv("TEST_DB_PASSWORD", "postgres"),
		DBName:     getEnv("TEST_DB_NAME", "studybuddy_test"),
		JWTSecret:  "testsecret",
		ServerPort: "8080",
		Timezone:   "UTC",
	}

	var err error
	db, err = utils.InitDB(cfg)
	if err != nil {
		return
	}

	timerManager := timer.NewManager(
		&timer.GormStateStore{DB: db},
		func(uid uint, final timer.Snapshot) error {
			return controllers.RecordTimerSession(db, uid, final.DurationMinutes, final.SubjectName)
		},
		nil,
	)

	app = fiber.New()
	routes.SetupRoutes(app, db, cfg, timerManager)

	registerTestUser()
}

func teardown() {
	if db == nil {
		return
	}
	db.Migrator().DropTable(
		&models.User{},
		&models.LoginHistory{},
		&models.Subject{},
		&models.Topic{},
		&models.Question{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.StudySession{},
		&models.StudyTask{},
		&models.TimerState{},
	)
}

func registerTestUser() {
	body, _ := json.Marshal(map[string]string{
		"username":   "testuser",
		"email":      "test@example.com",
		"password":   "password123",
		"first_name": "Test",
		"last_name":  "User",
	})

	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		return
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if token, ok := result["token"].(string); ok {
		jwtToken = token
	}
	if user, ok := result["user"].(map[string]interface{}); ok {
		if id, ok := user["id"].(float64); ok {
			userID = uint(id)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// doRequest sends an authenticated JSON request against the test app and
// decodes the response body, stashing the status under "_status".
func doRequest(t *testing.T, method, target string, payload interface{}) map[string]interface{} {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", jwtToken)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, target, err)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result == nil {
		result = map[string]interface{}{}
	}
	result["_status"] = resp.StatusCode
	return result
}
