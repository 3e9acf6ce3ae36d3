package gateway

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
	"time"

	"pmove/models"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Client talks to the external PMove API: reservation lookup, ticket
// submission, accounts and the confirmation mailer.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Logger:  logger,
	}
}

// APIError is a non-2xx answer from the API. Message is what the API said,
// passed through verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) StatusCode() int { return e.Status }

type messageBody struct {
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "cannot encode request body")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Wrap(err, "cannot create PMove API request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.Logger.Debug("PMove API request", zap.String("method", method), zap.String("path", path))
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrap(err, "cannot reach PMove API")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "cannot read PMove API response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var m messageBody
		if json.Unmarshal(raw, &m) == nil && m.Message != "" {
			apiErr.Message = m.Message
		} else {
			apiErr.Message = fmt.Sprintf("PMove API answered %d", resp.StatusCode)
		}
		c.Logger.Warn("PMove API error", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return errors.Wrap(err, "cannot decode PMove API response")
	}
	return nil
}

type checkReservationRequest struct {
	Number  int    `json:"num_reservation"`
	Carrier string `json:"base"`
}

type checkReservationResponse struct {
	Reservation *struct {
		Number        any    `json:"num_reservation"`
		Origin        string `json:"lieu_depart"`
		Destination   string `json:"lieu_arrivee"`
		DepartureTime string `json:"heure_depart"`
		ArrivalTime   string `json:"heure_arrivee"`
	} `json:"reservation"`
}

// CheckReservation looks a reservation up at the given carrier. A 2xx answer
// without a reservation is reported as a 404 APIError.
func (c *Client) CheckReservation(ctx context.Context, number int, carrier models.Carrier) (models.Leg, error) {
	var resp checkReservationResponse
	req := checkReservationRequest{Number: number, Carrier: string(carrier)}
	if err := c.do(ctx, http.MethodPost, "/traj/checkReservation", nil, req, &resp); err != nil {
		return models.Leg{}, err
	}
	if resp.Reservation == nil {
		return models.Leg{}, &APIError{Status: http.StatusNotFound, Message: "no matching reservation was found"}
	}

	r := resp.Reservation
	resNumber := stringOf(r.Number)
	if resNumber == "" {
		resNumber = strconv.Itoa(number)
	}
	return models.Leg{
		ReservationNumber: resNumber,
		Carrier:           carrier,
		Origin:            r.Origin,
		Destination:       r.Destination,
		DepartureTime:     r.DepartureTime,
		ArrivalTime:       r.ArrivalTime,
	}, nil
}

type submitRequest struct {
	Billet Billet `json:"billet"`
	Email  string `json:"email"`
}

// Submit hands the finished ticket to the API.
func (c *Client) Submit(ctx context.Context, t *models.Ticket, email string) error {
	return c.do(ctx, http.MethodPost, "/reservation/addToRedis", nil, submitRequest{Billet: EncodeBillet(t), Email: email}, nil)
}

type loginRequest struct {
	Mail     string `json:"mail"`
	Password string `json:"password"`
}

type loginResponse struct {
	User *models.Profile `json:"user"`
}

func (c *Client) Login(ctx context.Context, mail, password string) (models.Profile, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/users/userLog", nil, loginRequest{Mail: mail, Password: password}, &resp); err != nil {
		return models.Profile{}, err
	}
	if resp.User == nil {
		return models.Profile{}, &APIError{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	return *resp.User, nil
}

func (c *Client) Register(ctx context.Context, reg models.UserRegistration) error {
	return c.do(ctx, http.MethodPost, "/users/userAdd", nil, reg, nil)
}

type updateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UpdateProfile replaces the stored profile keyed by its client id.
func (c *Client) UpdateProfile(ctx context.Context, p models.Profile) error {
	var resp updateResponse
	if err := c.do(ctx, http.MethodPut, "/users/update", nil, p, &resp); err != nil {
		return err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "profile update was rejected"
		}
		return &APIError{Status: http.StatusBadRequest, Message: msg}
	}
	return nil
}

type ticketsResponse struct {
	Billets []Billet `json:"billets"`
}

// GetTickets lists the tickets stored for a rider. Billets that cannot be
// read back are skipped and logged.
func (c *Client) GetTickets(ctx context.Context, name, surname string) ([]models.Ticket, error) {
	var resp ticketsResponse
	q := url.Values{}
	q.Set("name", name)
	q.Set("surname", surname)
	if err := c.do(ctx, http.MethodGet, "/reservation/getTickets", q, nil, &resp); err != nil {
		return nil, err
	}

	tickets := make([]models.Ticket, 0, len(resp.Billets))
	for _, b := range resp.Billets {
		t, err := DecodeBillet(b)
		if err != nil {
			c.Logger.Warn("Skipping unreadable billet", zap.Error(err))
			continue
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func (c *Client) DeleteReservation(ctx context.Context, reservationNumber string) error {
	body := map[string]string{"num_reservation": reservationNumber}
	return c.do(ctx, http.MethodDelete, "/reservation/deleteFromRedis", nil, body, nil)
}

type confirmationEmailRequest struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (c *Client) SendConfirmationEmail(ctx context.Context, email, subject, message string) error {
	req := confirmationEmailRequest{Email: email, Subject: subject, Message: message}
	return c.do(ctx, http.MethodPost, "/reservation/sendConfirmationEmail", nil, req, nil)
}
