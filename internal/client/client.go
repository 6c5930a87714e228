package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"spacerh.dev/internal/hr"
)

// APIError carries the HTTP status and server detail of a failed call.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == status
}

// Client talks to the SPACE API. The bearer token is attached to every
// request while set; any 401 outside the login exchange fires the
// unauthorized hook so the session layer can force a logout.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string

	onUnauthorized func()
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken seeds the bearer token, typically from stored credentials.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// OnUnauthorized registers the hook invoked when the server rejects the
// current token.
func OnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken swaps the bearer token used for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken drops the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for a token. The form encoding matches the
// server contract; the token is stored on success. A 401 here never
// triggers the unauthorized hook, bad credentials are a login outcome
// and not a session break.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiErrorFrom(resp)
	}
	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", &APIError{Status: resp.StatusCode, Detail: "empty token in response"}
	}
	c.SetToken(payload.AccessToken)
	return payload.AccessToken, nil
}

// Me returns the profile of the token holder.
func (c *Client) Me(ctx context.Context) (hr.User, error) {
	var user hr.User
	err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &user)
	return user, err
}

// UserParams is the payload for creating an account.
type UserParams struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CPF       string `json:"cpf"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// UserUpdateParams carries a partial account update; nil fields are left
// unchanged.
type UserUpdateParams struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	Role      *string `json:"role,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

func (c *Client) ListUsers(ctx context.Context) ([]hr.User, error) {
	var users []hr.User
	err := c.do(ctx, http.MethodGet, "/users", nil, nil, &users)
	return users, err
}

func (c *Client) GetUser(ctx context.Context, id int) (hr.User, error) {
	var user hr.User
	err := c.do(ctx, http.MethodGet, "/users/"+strconv.Itoa(id), nil, nil, &user)
	return user, err
}

func (c *Client) CreateUser(ctx context.Context, params UserParams) (hr.User, error) {
	var user hr.User
	err := c.do(ctx, http.MethodPost, "/users", nil, params, &user)
	return user, err
}

func (c *Client) UpdateUser(ctx context.Context, id int, params UserUpdateParams) (hr.User, error) {
	var user hr.User
	err := c.do(ctx, http.MethodPut, "/users/"+strconv.Itoa(id), nil, params, &user)
	return user, err
}

// CompanyParams is the payload for registering a client company.
type CompanyParams struct {
	Name          string `json:"name"`
	TaxID         string `json:"tax_id"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
}

// CompanyUpdateParams carries a partial company update.
type CompanyUpdateParams struct {
	Name          *string `json:"name,omitempty"`
	TaxID         *string `json:"tax_id,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	ContactPerson *string `json:"contact_person,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

func (c *Client) ListCompanies(ctx context.Context) ([]hr.Company, error) {
	var companies []hr.Company
	err := c.do(ctx, http.MethodGet, "/companies", nil, nil, &companies)
	return companies, err
}

func (c *Client) GetCompany(ctx context.Context, id int) (hr.Company, error) {
	var company hr.Company
	err := c.do(ctx, http.MethodGet, "/companies/"+strconv.Itoa(id), nil, nil, &company)
	return company, err
}

func (c *Client) CreateCompany(ctx context.Context, params CompanyParams) (hr.Company, error) {
	var company hr.Company
	err := c.do(ctx, http.MethodPost, "/companies", nil, params, &company)
	return company, err
}

func (c *Client) UpdateCompany(ctx context.Context, id int, params CompanyUpdateParams) (hr.Company, error) {
	var company hr.Company
	err := c.do(ctx, http.MethodPut, "/companies/"+strconv.Itoa(id), nil, params, &company)
	return company, err
}

// ShiftParams describes one shift inside a new daily request.
type ShiftParams struct {
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	PaymentAmount      float64 `json:"payment_amount"`
	Quantity           int     `json:"quantity"`
	HasDiscount        bool    `json:"has_discount,omitempty"`
	DiscountPercentage float64 `json:"discount_percentage,omitempty"`
}

// RequestParams is the payload for opening a daily staffing request.
type RequestParams struct {
	CompanyID   int           `json:"company_id"`
	RequestDate string        `json:"request_date"`
	Notes       string        `json:"notes,omitempty"`
	Shifts      []ShiftParams `json:"shifts"`
}

// RequestFilter narrows request listings and statistics.
type RequestFilter struct {
	From      string
	To        string
	CompanyID int
	Status    string
}

func (f RequestFilter) query() url.Values {
	q := url.Values{}
	if f.From != "" {
		q.Set("from", f.From)
	}
	if f.To != "" {
		q.Set("to", f.To)
	}
	if f.CompanyID > 0 {
		q.Set("company_id", strconv.Itoa(f.CompanyID))
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	return q
}

func (c *Client) ListRequests(ctx context.Context, filter RequestFilter) ([]hr.DailyRequest, error) {
	var requests []hr.DailyRequest
	err := c.do(ctx, http.MethodGet, "/daily-requests", filter.query(), nil, &requests)
	return requests, err
}

func (c *Client) GetRequest(ctx context.Context, id int) (hr.DailyRequest, error) {
	var request hr.DailyRequest
	err := c.do(ctx, http.MethodGet, "/daily-requests/"+strconv.Itoa(id), nil, nil, &request)
	return request, err
}

func (c *Client) CreateRequest(ctx context.Context, params RequestParams) (hr.DailyRequest, error) {
	var request hr.DailyRequest
	err := c.do(ctx, http.MethodPost, "/daily-requests", nil, params, &request)
	return request, err
}

func (c *Client) UpdateRequestStatus(ctx context.Context, id int, status string) (hr.DailyRequest, error) {
	var request hr.DailyRequest
	err := c.do(ctx, http.MethodPut, "/daily-requests/"+strconv.Itoa(id)+"/status", nil, map[string]string{"status": status}, &request)
	return request, err
}

func (c *Client) DeleteRequest(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/daily-requests/"+strconv.Itoa(id), nil, nil, nil)
}

func (c *Client) AssignEmployee(ctx context.Context, shiftID, employeeID int) (hr.ShiftAssignment, error) {
	var assignment hr.ShiftAssignment
	err := c.do(ctx, http.MethodPost, "/daily-requests/assignments", nil, map[string]int{
		"shift_id":    shiftID,
		"employee_id": employeeID,
	}, &assignment)
	return assignment, err
}

func (c *Client) UpdateAssignmentStatus(ctx context.Context, id int, status string) (hr.ShiftAssignment, error) {
	var assignment hr.ShiftAssignment
	err := c.do(ctx, http.MethodPut, "/daily-requests/assignments/"+strconv.Itoa(id)+"/status", nil, map[string]string{"status": status}, &assignment)
	return assignment, err
}

func (c *Client) RemoveAssignment(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/daily-requests/assignments/"+strconv.Itoa(id), nil, nil, nil)
}

func (c *Client) DashboardStats(ctx context.Context, filter RequestFilter) ([]hr.CompanyRequestCount, error) {
	var stats []hr.CompanyRequestCount
	err := c.do(ctx, http.MethodGet, "/daily-requests/stats/dashboard", filter.query(), nil, &stats)
	return stats, err
}

func (c *Client) AttendanceStats(ctx context.Context, filter RequestFilter) ([]hr.AttendanceCount, error) {
	var stats []hr.AttendanceCount
	err := c.do(ctx, http.MethodGet, "/daily-requests/stats/attendance", filter.query(), nil, &stats)
	return stats, err
}

func (c *Client) PaymentsReport(ctx context.Context, from, to string) (hr.PaymentsReport, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	var report hr.PaymentsReport
	err := c.do(ctx, http.MethodGet, "/daily-requests/report/payments", q, nil, &report)
	return report, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		apiErr := apiErrorFrom(resp)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return apiErr
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiErrorFrom(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func apiErrorFrom(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Detail = body.Detail
	}
	return apiErr
}
