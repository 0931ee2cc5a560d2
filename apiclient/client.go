package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"hospital-portal/models"
	"hospital-portal/monitoring"
)

const maxErrorBody = 4 << 10

// Client talks to the hospital REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Doctors(ctx context.Context) ([]models.Doctor, error) {
	var doctors []models.Doctor
	if err := c.do(ctx, "list doctors", http.MethodGet, "/doctors", nil, &doctors); err != nil {
		return nil, err
	}
	return doctors, nil
}

func (c *Client) CreateAppointment(ctx context.Context, a models.Appointment) (models.Appointment, error) {
	a.ID = ""
	var created models.Appointment
	if err := c.do(ctx, "create appointment", http.MethodPost, "/appointments", a, &created); err != nil {
		return models.Appointment{}, err
	}
	return created, nil
}

func (c *Client) Appointments(ctx context.Context, userEmail string) ([]models.Appointment, error) {
	path := "/appointments?" + url.Values{"userEmail": {userEmail}}.Encode()
	var appointments []models.Appointment
	if err := c.do(ctx, "list appointments", http.MethodGet, path, nil, &appointments); err != nil {
		return nil, err
	}
	return appointments, nil
}

func (c *Client) UpdateAppointment(ctx context.Context, a models.Appointment) (models.Appointment, error) {
	var updated models.Appointment
	path := "/appointments/" + url.PathEscape(a.ID.String())
	if err := c.do(ctx, "update appointment", http.MethodPut, path, a, &updated); err != nil {
		return models.Appointment{}, err
	}
	return updated, nil
}

func (c *Client) DeleteAppointment(ctx context.Context, id models.ID) error {
	return c.do(ctx, "delete appointment", http.MethodDelete, "/appointments/"+url.PathEscape(id.String()), nil, nil)
}

// Users lists every account. Prefer FindUser.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, "list users", http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindUser looks up a single account by email. The filter is re-applied on
// the response so a server that ignores the query still yields the right
// record. Returns models.ErrNotFound when no account matches.
func (c *Client) FindUser(ctx context.Context, email string) (*models.User, error) {
	path := "/users?" + url.Values{"email": {email}}.Encode()
	var users []models.User
	if err := c.do(ctx, "find user", http.MethodGet, path, nil, &users); err != nil {
		return nil, err
	}
	i := slices.IndexFunc(users, func(u models.User) bool { return u.Email == email })
	if i < 0 {
		return nil, models.ErrNotFound
	}
	return &users[i], nil
}

func (c *Client) CreateUser(ctx context.Context, u models.User) error {
	u.ID = ""
	return c.do(ctx, "create user", http.MethodPost, "/users", u, nil)
}

// RegisterDoctor posts a doctor self-registration. The API must answer 201.
func (c *Client) RegisterDoctor(ctx context.Context, reg models.DoctorRegistration) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, "register doctor", http.MethodPost, "/api/doctors/register", reg, &resp, http.StatusCreated); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// do performs one request. With no expected codes any 2xx is accepted.
// out may be nil; an empty body leaves it untouched.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any, expect ...int) (err error) {
	defer func() {
		outcome := "ok"
		var apiErr *Error
		if errors.As(err, &apiErr) {
			outcome = apiErr.Reason.String()
		}
		monitoring.APICallsTotal.WithLabelValues(op, outcome).Inc()
	}()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Reason: ReasonTransport, Err: err}
	}
	defer res.Body.Close()

	if !accepted(res.StatusCode, expect) {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &Error{Op: op, Reason: ReasonStatus, Status: res.StatusCode, Message: serverMessage(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return &Error{Op: op, Reason: ReasonTransport, Status: res.StatusCode, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Op: op, Reason: ReasonDecode, Status: res.StatusCode, Err: err}
	}
	return nil
}

func accepted(status int, expect []int) bool {
	if len(expect) == 0 {
		return status >= 200 && status < 300
	}
	return slices.Contains(expect, status)
}

// serverMessage extracts {"message": ...} or {"error": ...} from an error body.
func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
