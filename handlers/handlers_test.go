package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tutorlink/api/handlers"
	"github.com/tutorlink/api/models"
	"github.com/tutorlink/api/notifications"
	"github.com/tutorlink/api/payments"
	"github.com/tutorlink/api/routes"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("JWT_SECRET", testJWTSecret)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.AvailabilitySlot{},
		&models.Subject{},
		&models.Booking{},
		&models.Review{},
	)
	require.NoError(t, err)
	return db
}

func newApp(db *gorm.DB, gateway payments.Gateway, notifier notifications.Notifier) *fiber.App {
	app := fiber.New()
	routes.AuthRoutes(app, &handlers.AuthHandler{DB: db})
	routes.BookingRoutes(app,
		&handlers.BookingHandler{DB: db, Gateway: gateway, Notifier: notifier},
		&handlers.PaymentHandler{DB: db, Gateway: gateway, Notifier: notifier})
	routes.ReviewRoutes(app, &handlers.ReviewHandler{DB: db})
	return app
}

func createUser(t *testing.T, db *gorm.DB, role string, hourlyRate *float64) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:       "Test " + role,
		Email:      fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8]),
		Password:   string(hash),
		Role:       role,
		HourlyRate: hourlyRate,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createSubject(t *testing.T, db *gorm.DB) models.Subject {
	t.Helper()
	subject := models.Subject{
		Name:       "Algebra " + uuid.NewString()[:8],
		GradeLevel: "High School",
		Category:   "Math",
	}
	require.NoError(t, db.Create(&subject).Error)
	return subject
}

func createBooking(t *testing.T, db *gorm.DB, student, tutor models.User, subject models.Subject, status string) models.Booking {
	t.Helper()
	booking := models.Booking{
		StudentID: student.ID,
		TutorID:   tutor.ID,
		SubjectID: subject.ID,
		Date:      time.Now().AddDate(0, 0, 7),
		StartTime: "10:00",
		EndTime:   "11:30",
		Duration:  1.5,
		Status:    status,
		Price:     60.00,
	}
	require.NoError(t, db.Create(&booking).Error)
	return booking
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

// fakeGateway records calls and reports a scripted intent status.
type fakeGateway struct {
	mu           sync.Mutex
	status       string
	clientSecret string
	createErr    error
	retrieveErr  error

	createdAmounts []int64
	retrieved      []string
	cancelled      []string
	refunded       []string
}

func (f *fakeGateway) CreateIntent(amountCents int64, currency string, metadata map[string]string) (*payments.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createdAmounts = append(f.createdAmounts, amountCents)
	return &payments.Intent{
		ID:           fmt.Sprintf("pi_test_%d", len(f.createdAmounts)),
		Status:       payments.IntentStatusRequiresPaymentMethod,
		ClientSecret: "cs_test_secret",
		Amount:       amountCents,
		Metadata:     metadata,
	}, nil
}

func (f *fakeGateway) RetrieveIntent(id string) (*payments.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	f.retrieved = append(f.retrieved, id)
	return &payments.Intent{
		ID:           id,
		Status:       f.status,
		ClientSecret: f.clientSecret,
	}, nil
}

func (f *fakeGateway) CancelIntent(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
	return nil
}

func (f *fakeGateway) Refund(paymentIntentID string, amountCents int64, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunded = append(f.refunded, paymentIntentID)
	return nil
}

func (f *fakeGateway) retrieveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.retrieved)
}

func (f *fakeGateway) cancelCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cancelled)
}

func (f *fakeGateway) refundCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.refunded)
}

// fakeNotifier counts outbound emails without sending anything.
type fakeNotifier struct {
	mu                   sync.Mutex
	bookingConfirmations int
	paymentConfirmations int
	newBookingNotices    int
}

func (f *fakeNotifier) SendBookingConfirmation(toEmail, toName string, d notifications.BookingDetails) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookingConfirmations++
	return true
}

func (f *fakeNotifier) SendPaymentConfirmation(toEmail, toName string, d notifications.PaymentDetails) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paymentConfirmations++
	return true
}

func (f *fakeNotifier) SendNewBookingNotification(toEmail, toName string, d notifications.BookingDetails) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.newBookingNotices++
	return true
}

func (f *fakeNotifier) paymentConfirmationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paymentConfirmations
}
