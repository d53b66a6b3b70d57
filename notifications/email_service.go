package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	config "github.com/tutorlink/api/configs"
)

// BookingDetails carries the fields interpolated into booking-related emails.
type BookingDetails struct {
	StudentName string
	TutorName   string
	Subject     string
	Date        string
	StartTime   string
	EndTime     string
}

// PaymentDetails carries the fields interpolated into payment emails.
type PaymentDetails struct {
	Amount    float64
	BookingID string
}

// Notifier is the outbound email contract. Implementations never return
// errors to callers; a false result means the send failed and was logged.
type Notifier interface {
	SendBookingConfirmation(toEmail, toName string, details BookingDetails) bool
	SendPaymentConfirmation(toEmail, toName string, details PaymentDetails) bool
	SendNewBookingNotification(toEmail, toName string, details BookingDetails) bool
}

// EmailService sends transactional email through the Brevo HTTP API.
type EmailService struct {
	apiKey      string
	senderEmail string
	senderName  string
	client      *http.Client
}

func NewEmailService() *EmailService {
	svc := &EmailService{
		apiKey:      config.Config("BREVO_API_KEY"),
		senderEmail: config.Config("EMAIL_SENDER"),
		senderName:  config.Config("EMAIL_SENDER_NAME"),
		client:      &http.Client{Timeout: 10 * time.Second},
	}

	if svc.apiKey == "" || svc.senderEmail == "" || svc.senderName == "" {
		log.Println("⚠️ Email service not configured. Outbound email is disabled.")
	} else {
		log.Println("✅ Email service initialized successfully.")
	}
	return svc
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func (s *EmailService) send(toEmail, toName, subject, htmlContent string) error {
	url := "https://api.brevo.com/v3/smtp/email"

	if s.apiKey == "" {
		return fmt.Errorf("email service not configured")
	}
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.senderName, "email": s.senderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to send email via Brevo: %s", string(bodyBytes))
	}

	return nil
}

func (s *EmailService) deliver(toEmail, toName, subject, htmlContent string) bool {
	if err := s.send(toEmail, toName, subject, htmlContent); err != nil {
		log.Printf("🔥 Failed to send email to %s: %v", toEmail, err)
		return false
	}
	log.Printf("✅ Email sent successfully to %s", toEmail)
	return true
}

func (s *EmailService) SendBookingConfirmation(toEmail, toName string, d BookingDetails) bool {
	subject := "Booking Confirmation - TutorLink"
	html := fmt.Sprintf(
		"<h1>Booking Confirmed</h1><p>Hello %s,</p><p>Your booking with %s for %s has been confirmed for %s from %s to %s.</p><p>Thank you for using TutorLink!</p>",
		toName, d.TutorName, d.Subject, d.Date, d.StartTime, d.EndTime)
	return s.deliver(toEmail, toName, subject, html)
}

func (s *EmailService) SendPaymentConfirmation(toEmail, toName string, d PaymentDetails) bool {
	subject := "Payment Confirmation - TutorLink"
	html := fmt.Sprintf(
		"<h1>Payment Confirmed</h1><p>Hello %s,</p><p>Your payment of %.2f for booking %s has been confirmed.</p><p>Thank you for using TutorLink!</p>",
		toName, d.Amount, d.BookingID)
	return s.deliver(toEmail, toName, subject, html)
}

func (s *EmailService) SendNewBookingNotification(toEmail, toName string, d BookingDetails) bool {
	subject := "New Booking - TutorLink"
	html := fmt.Sprintf(
		"<h1>New Booking</h1><p>Hello %s,</p><p>%s has booked a %s session with you on %s from %s to %s.</p>",
		toName, d.StudentName, d.Subject, d.Date, d.StartTime, d.EndTime)
	return s.deliver(toEmail, toName, subject, html)
}
