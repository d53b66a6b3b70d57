package payments

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	config "github.com/tutorlink/api/configs"
)

// Intent statuses reported by Stripe that the confirmation flow branches on.
const (
	IntentStatusSucceeded             = "succeeded"
	IntentStatusRequiresPaymentMethod = "requires_payment_method"
	IntentStatusRequiresConfirmation  = "requires_confirmation"
	IntentStatusRequiresAction        = "requires_action"
)

// Intent is the gateway-side record of an in-progress charge attempt.
type Intent struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	ClientSecret string            `json:"client_secret"`
	Amount       int64             `json:"amount"`
	Metadata     map[string]string `json:"metadata"`
}

// Gateway is the payment processor contract. Calls are never retried; a
// failure is surfaced to the caller immediately.
type Gateway interface {
	CreateIntent(amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(id string) (*Intent, error)
	CancelIntent(id string) error
	Refund(paymentIntentID string, amountCents int64, reason string) error
}

// StripeService talks to the Stripe REST API with form-encoded requests.
type StripeService struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewStripeService() *StripeService {
	baseURL := config.Config("STRIPE_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &StripeService{
		secretKey: config.Config("STRIPE_SECRET_KEY"),
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *StripeService) do(method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.secretKey, "")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr stripeError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s", apiErr.Error.Message)
		}
		return fmt.Errorf("stripe API returned status %s", resp.Status)
	}

	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

func (s *StripeService) CreateIntent(amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", currency)
	form.Add("payment_method_types[]", "card")
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var intent Intent
	if err := s.do("POST", "/v1/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (s *StripeService) RetrieveIntent(id string) (*Intent, error) {
	var intent Intent
	if err := s.do("GET", "/v1/payment_intents/"+id, nil, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

func (s *StripeService) CancelIntent(id string) error {
	return s.do("POST", "/v1/payment_intents/"+id+"/cancel", url.Values{}, nil)
}

func (s *StripeService) Refund(paymentIntentID string, amountCents int64, reason string) error {
	form := url.Values{}
	form.Set("payment_intent", paymentIntentID)
	if amountCents > 0 {
		form.Set("amount", strconv.FormatInt(amountCents, 10))
	}
	if reason != "" {
		form.Set("reason", reason)
	}
	return s.do("POST", "/v1/refunds", form, nil)
}
