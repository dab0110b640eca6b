package handlers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ggg436/lingosses/config"
	"github.com/ggg436/lingosses/database"
	"github.com/ggg436/lingosses/middleware"
	"github.com/ggg436/lingosses/models"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, testDB.AutoMigrate(
		&models.Course{},
		&models.Unit{},
		&models.Lesson{},
		&models.Challenge{},
		&models.ChallengeOption{},
		&models.UserProgress{},
		&models.ChallengeProgress{},
		&models.UserSubscription{},
	))

	config.AppConfig = &config.Config{
		JWTSecret:     "test-secret-test-secret-test-secret-1234",
		AppURL:        "http://localhost:3000",
		StripeAPIBase: "http://127.0.0.1:1",
	}

	database.SetDB(testDB)
	Init(testDB, config.AppConfig)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "error": message})
		},
	})
	RegisterRoutes(app)

	return app, testDB
}

func seedAPITestCourse(t *testing.T, db *gorm.DB) models.Course {
	t.Helper()

	course := models.Course{
		Title:    "Spanish",
		ImageSrc: "/es.svg",
		Units: []models.Unit{{
			Title: "Unit 1", Description: "Learn the basics", Order: 1,
			Lessons: []models.Lesson{{
				Title: "Nouns", Order: 1,
				Challenges: []models.Challenge{
					{Type: models.ChallengeSelect, Question: `Which one of these is "the man"?`, Order: 1},
					{Type: models.ChallengeAssist, Question: `"the man"`, Order: 2},
				},
			}},
		}},
	}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func userToken(t *testing.T, userID string) string {
	t.Helper()

	token, err := middleware.GenerateToken(userID, "Test User", "/mascot.svg", false)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}

	return resp, parsed
}

func TestGuestSession(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := doRequest(t, app, "POST", "/api/auth/guest", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, body["token"])
	assert.Contains(t, body["user_id"], "guest_")
	assert.Equal(t, true, body["is_guest"])
}

func TestGetCourses(t *testing.T) {
	app, db := setupApp(t)
	seedAPITestCourse(t, db)

	resp, body := doRequest(t, app, "GET", "/api/courses", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	courses := body["courses"].([]interface{})
	require.Len(t, courses, 1)
}

func TestSetActiveCourse_CreatesProgress(t *testing.T) {
	app, db := setupApp(t)
	course := seedAPITestCourse(t, db)
	token := userToken(t, "user_1")

	resp, body := doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/active", course.ID), token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, float64(course.ID), body["active_course_id"])

	var progress models.UserProgress
	require.NoError(t, db.Where("user_id = ?", "user_1").First(&progress).Error)
	assert.Equal(t, models.DefaultHearts, progress.Hearts)
	require.NotNil(t, progress.ActiveCourseID)
	assert.Equal(t, course.ID, *progress.ActiveCourseID)
}

func TestSetActiveCourse_RejectsEmptyCourse(t *testing.T) {
	app, db := setupApp(t)
	empty := models.Course{Title: "Empty"}
	require.NoError(t, db.Create(&empty).Error)
	token := userToken(t, "user_1")

	resp, body := doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/active", empty.ID), token, nil)
	require.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Course is empty", body["error"])
}

func TestGetLearn_RedirectsWithoutActiveCourse(t *testing.T) {
	app, _ := setupApp(t)
	token := userToken(t, "user_1")

	resp, body := doRequest(t, app, "GET", "/api/learn", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "/courses", body["redirect"])
}

func TestGetLearn_Aggregate(t *testing.T) {
	app, db := setupApp(t)
	course := seedAPITestCourse(t, db)
	token := userToken(t, "user_1")

	resp, _ := doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/active", course.ID), token, nil)
	require.Equal(t, 200, resp.StatusCode)

	resp, body := doRequest(t, app, "GET", "/api/learn", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["has_active_subscription"])
	require.Len(t, body["units"].([]interface{}), 1)
	assert.Equal(t, float64(course.Units[0].Lessons[0].ID), body["active_lesson_id"])
}

func TestUpsertChallengeProgress_FirstCompletionEarnsPoints(t *testing.T) {
	app, db := setupApp(t)
	course := seedAPITestCourse(t, db)
	token := userToken(t, "user_1")
	challenge := course.Units[0].Lessons[0].Challenges[0]

	resp, _ := doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/active", course.ID), token, nil)
	require.Equal(t, 200, resp.StatusCode)

	resp, body := doRequest(t, app, "POST", fmt.Sprintf("/api/challenges/%d/progress", challenge.ID), token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, false, body["practice"])
	assert.Equal(t, float64(models.PointsPerChallenge), body["points"])
	assert.Equal(t, float64(models.DefaultHearts), body["hearts"])
}

func TestUpsertChallengeProgress_PracticeRestoresHeart(t *testing.T) {
	app, db := setupApp(t)
	course := seedAPITestCourse(t, db)
	token := userToken(t, "user_1")
	challenge := course.Units[0].Lessons[0].Challenges[0]

	doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/active", course.ID), token, nil)
	doRequest(t, app, "POST", fmt.Sprintf("/api/challenges/%d/progress", challenge.ID), token, nil)

	require.NoError(t, db.Model(&models.UserProgress{}).
		Where("user_id = ?", "user_1").Update("hearts", 2).Error)

	resp, body := doRequest(t, app, "POST", fmt.Sprintf("/api/challenges/%d/progress", challenge.ID), token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, true, body["practice"])
	assert.Equal(t, float64(3), body["hearts"])
	assert.Equal(t, float64(2*models.PointsPerChallenge), body["points"])
}

func TestUpsertChallengeProgress_BlockedWithoutHearts(t *testing.T) {
	app, db := setupApp(t)
	course := seedAPITestCourse(t, db)
	token := userToken(t, "user_1")
	challenge := course.Units[0].Lessons[0].Challenges[0]

	doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/active", course.ID), token, nil)
	require.NoError(t, db.Model(&models.UserProgress{}).
		Where("user_id = ?", "user_1").Update("hearts", 0).Error)

	resp, body := doRequest(t, app, "POST", fmt.Sprintf("/api/challenges/%d/progress", challenge.ID), token, nil)
	require.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "hearts", body["error"])
}

func TestUpsertChallengeProgress_SubscriptionBypassesHearts(t *testing.T) {
	app, db := setupApp(t)
	course := seedAPITestCourse(t, db)
	token := userToken(t, "user_1")
	challenge := course.Units[0].Lessons[0].Challenges[0]

	doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/active", course.ID), token, nil)
	require.NoError(t, db.Model(&models.UserProgress{}).
		Where("user_id = ?", "user_1").Update("hearts", 0).Error)

	periodEnd := time.Now().Add(30 * 24 * time.Hour)
	require.NoError(t, db.Create(&models.UserSubscription{
		UserID:                 "user_1",
		StripeCustomerID:       "cus_1",
		StripeSubscriptionID:   "sub_1",
		StripePriceID:          "price_1",
		StripeCurrentPeriodEnd: &periodEnd,
	}).Error)

	resp, _ := doRequest(t, app, "POST", fmt.Sprintf("/api/challenges/%d/progress", challenge.ID), token, nil)
	require.Equal(t, 200, resp.StatusCode)
}

func TestReduceHearts(t *testing.T) {
	app, db := setupApp(t)
	course := seedAPITestCourse(t, db)
	token := userToken(t, "user_1")
	challenge := course.Units[0].Lessons[0].Challenges[0]

	doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/active", course.ID), token, nil)

	resp, body := doRequest(t, app, "POST", fmt.Sprintf("/api/challenges/%d/mistake", challenge.ID), token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, float64(models.DefaultHearts-1), body["hearts"])
}

func TestReduceHearts_PracticeIsFree(t *testing.T) {
	app, db := setupApp(t)
	course := seedAPITestCourse(t, db)
	token := userToken(t, "user_1")
	challenge := course.Units[0].Lessons[0].Challenges[0]

	doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/active", course.ID), token, nil)
	doRequest(t, app, "POST", fmt.Sprintf("/api/challenges/%d/progress", challenge.ID), token, nil)

	resp, body := doRequest(t, app, "POST", fmt.Sprintf("/api/challenges/%d/mistake", challenge.ID), token, nil)
	require.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "practice", body["error"])
}

func TestRefillHearts(t *testing.T) {
	app, db := setupApp(t)
	course := seedAPITestCourse(t, db)
	token := userToken(t, "user_1")

	doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/active", course.ID), token, nil)
	require.NoError(t, db.Model(&models.UserProgress{}).
		Where("user_id = ?", "user_1").
		Updates(map[string]interface{}{"hearts": 1, "points": 25}).Error)

	resp, body := doRequest(t, app, "POST", "/api/hearts/refill", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, float64(models.MaxHearts), body["hearts"])
	assert.Equal(t, float64(25-models.PointsToRefill), body["points"])
}

func TestRefillHearts_RequiresPoints(t *testing.T) {
	app, db := setupApp(t)
	course := seedAPITestCourse(t, db)
	token := userToken(t, "user_1")

	doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/active", course.ID), token, nil)
	require.NoError(t, db.Model(&models.UserProgress{}).
		Where("user_id = ?", "user_1").
		Updates(map[string]interface{}{"hearts": 1, "points": 5}).Error)

	resp, body := doRequest(t, app, "POST", "/api/hearts/refill", token, nil)
	require.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Not enough points", body["error"])
}

func TestGetLesson_Session(t *testing.T) {
	app, db := setupApp(t)
	course := seedAPITestCourse(t, db)
	token := userToken(t, "user_1")
	lesson := course.Units[0].Lessons[0]

	doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/active", course.ID), token, nil)

	resp, body := doRequest(t, app, "GET", fmt.Sprintf("/api/lessons/%d", lesson.ID), token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, float64(models.DefaultHearts), body["hearts"])

	session := body["lesson"].(map[string]interface{})
	assert.Equal(t, "Nouns", session["title"])
	assert.Len(t, session["challenges"].([]interface{}), 2)
}

func TestGetLesson_MissingRedirects(t *testing.T) {
	app, db := setupApp(t)
	course := seedAPITestCourse(t, db)
	token := userToken(t, "user_1")

	doRequest(t, app, "POST", fmt.Sprintf("/api/courses/%d/active", course.ID), token, nil)

	resp, body := doRequest(t, app, "GET", "/api/lessons/9999", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "/learn", body["redirect"])
}

func TestGetLeaderboard(t *testing.T) {
	app, db := setupApp(t)
	token := userToken(t, "user_1")

	for i, points := range []int{30, 50, 10} {
		require.NoError(t, db.Create(&models.UserProgress{
			UserID:   fmt.Sprintf("user_%d", i+1),
			UserName: fmt.Sprintf("User %d", i+1),
			Points:   points,
			Hearts:   5,
		}).Error)
	}

	resp, body := doRequest(t, app, "GET", "/api/leaderboard?limit=2", token, nil)
	require.Equal(t, 200, resp.StatusCode)

	entries := body["leaderboard"].([]interface{})
	require.Len(t, entries, 2)
	first := entries[0].(map[string]interface{})
	assert.Equal(t, float64(50), first["points"])
}

func TestAuthRequired(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doRequest(t, app, "GET", "/api/learn", "", nil)
	assert.Equal(t, 401, resp.StatusCode)

	resp, _ = doRequest(t, app, "GET", "/api/leaderboard", "invalid-token", nil)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestAdminRoutesRejectUserToken(t *testing.T) {
	app, _ := setupApp(t)
	token := userToken(t, "user_1")

	resp, _ := doRequest(t, app, "POST", "/api/admin/courses", token, map[string]string{"title": "X"})
	assert.Equal(t, 403, resp.StatusCode)
}

func TestAdminCRUD(t *testing.T) {
	app, _ := setupApp(t)

	adminToken, _, err := middleware.GenerateAdminToken("admin")
	require.NoError(t, err)

	resp, body := doRequest(t, app, "POST", "/api/admin/courses", adminToken,
		map[string]string{"title": "Italian", "image_src": "/it.svg"})
	require.Equal(t, 201, resp.StatusCode)
	courseID := body["course"].(map[string]interface{})["id"].(float64)

	resp, _ = doRequest(t, app, "POST", "/api/admin/units", adminToken, map[string]interface{}{
		"title": "Unit 1", "description": "Basics", "course_id": courseID, "order": 1,
	})
	require.Equal(t, 201, resp.StatusCode)

	// Unknown parent is rejected before the insert.
	resp, body = doRequest(t, app, "POST", "/api/admin/units", adminToken, map[string]interface{}{
		"title": "Unit X", "description": "Orphan", "course_id": 9999, "order": 1,
	})
	require.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Course does not exist", body["error"])

	resp, _ = doRequest(t, app, "DELETE", fmt.Sprintf("/api/admin/courses/%d", int(courseID)), adminToken, nil)
	require.Equal(t, 200, resp.StatusCode)

	resp, _ = doRequest(t, app, "DELETE", fmt.Sprintf("/api/admin/courses/%d", int(courseID)), adminToken, nil)
	assert.Equal(t, 404, resp.StatusCode)
}

func signWebhookPayload(payload []byte, secret string) string {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestWebhookRecordsCheckoutCompletion(t *testing.T) {
	app, db := setupApp(t)

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/subscriptions/sub_123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"id": "sub_123",
			"customer": "cus_123",
			"current_period_end": %d,
			"items": {"data": [{"price": {"id": "price_123"}}]}
		}`, periodEnd)
	}))
	defer provider.Close()

	config.AppConfig.StripeAPIBase = provider.URL
	config.AppConfig.StripeWebhookSecret = "whsec_test"
	Init(db, config.AppConfig)

	payload := []byte(`{
		"type": "checkout.session.completed",
		"data": {"object": {"subscription": "sub_123", "metadata": {"userId": "user_1"}}}
	}`)

	req := httptest.NewRequest("POST", "/api/billing/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signWebhookPayload(payload, "whsec_test"))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var sub models.UserSubscription
	require.NoError(t, db.Where("user_id = ?", "user_1").First(&sub).Error)
	assert.Equal(t, "sub_123", sub.StripeSubscriptionID)
	assert.Equal(t, "cus_123", sub.StripeCustomerID)
	assert.True(t, sub.IsActive())
}

func TestWebhookIgnoresUnhandledEventTypes(t *testing.T) {
	app, db := setupApp(t)
	config.AppConfig.StripeWebhookSecret = "whsec_test"
	Init(db, config.AppConfig)

	payload := []byte(`{"type": "customer.created", "data": {"object": {}}}`)
	req := httptest.NewRequest("POST", "/api/billing/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signWebhookPayload(payload, "whsec_test"))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	app, _ := setupApp(t)
	config.AppConfig.StripeWebhookSecret = "whsec_test"
	Init(database.GetDB(), config.AppConfig)

	req := httptest.NewRequest("POST", "/api/billing/webhook",
		bytes.NewReader([]byte(`{"type":"checkout.session.completed"}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
