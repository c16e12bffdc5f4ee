package flow

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/regaloamor/storefront-backend/pkg/config"
	"github.com/regaloamor/storefront-backend/pkg/logger"
)

const (
	sandboxBaseURL    = "https://sandbox.flow.cl/api"
	productionBaseURL = "https://www.flow.cl/api"

	// StatusApproved is the gateway's success sentinel on confirmation
	// callbacks. Any other value means the payment was not collected.
	StatusApproved = "1"
)

var (
	errAPIKeyRequired = errors.New("flow api key is required")
	errSecretRequired = errors.New("flow secret is required")
	errInvalidFlowEnv = errors.New(`flow environment must be "sandbox" or "production"`)
)

// Client talks to the Flow payment-collection API. Every request is signed
// with an HMAC-SHA256 over the sorted parameter set.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	secret      string
	environment string
}

// NewClient validates the configuration and builds a gateway client. The
// HTTP timeout bounds the whole checkout call: a submission that cannot
// reach the gateway within it fails rather than leaving an order stranded.
func NewClient(ctx context.Context, cfg config.FlowConfig, logg *logger.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errSecretRequired
	}

	env := cfg.Environment()
	var baseURL string
	switch env {
	case "sandbox":
		baseURL = sandboxBaseURL
	case "production":
		baseURL = productionBaseURL
	default:
		return nil, errInvalidFlowEnv
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("flow client initialized (%s)", env))
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     baseURL,
		apiKey:      apiKey,
		secret:      secret,
		environment: env,
	}, nil
}

// Environment reports the normalized Flow environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// PaymentRequest carries the fields for payment/create.
type PaymentRequest struct {
	CommerceOrder   string
	Subject         string
	AmountCLP       int
	Email           string
	URLConfirmation string
	URLReturn       string
}

// PaymentResponse is the gateway's answer: the customer must be redirected
// to URL with the token appended.
type PaymentResponse struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// PaymentURL is the final redirect target for the customer.
func (r PaymentResponse) PaymentURL() string {
	return fmt.Sprintf("%s?token=%s", r.URL, r.Token)
}

// CreatePayment registers a collection attempt with the gateway and returns
// the redirect target. The amount is always the server-computed order total.
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	if req.CommerceOrder == "" {
		return nil, errors.New("commerce order is required")
	}
	if req.AmountCLP <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", req.AmountCLP)
	}
	if req.Email == "" {
		return nil, errors.New("payer email is required")
	}

	params := map[string]string{
		"apiKey":          c.apiKey,
		"commerceOrder":   req.CommerceOrder,
		"subject":         req.Subject,
		"currency":        "CLP",
		"amount":          strconv.Itoa(req.AmountCLP),
		"email":           req.Email,
		"urlConfirmation": req.URLConfirmation,
		"urlReturn":       req.URLReturn,
	}

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	form.Set("s", c.sign(params))

	endpoint := c.baseURL + "/payment/create"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling flow payment/create: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading flow response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flow payment/create returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payment PaymentResponse
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("decoding flow response: %w", err)
	}
	if payment.URL == "" || payment.Token == "" {
		return nil, errors.New("flow did not return a payment url")
	}

	return &payment, nil
}

// sign builds the HMAC-SHA256 signature over the parameters sorted by key
// and joined as key=value&key=value.
func (c *Client) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}
