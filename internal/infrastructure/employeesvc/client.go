package employeesvc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"arrangement/internal/domain/entities"
	"arrangement/internal/infrastructure/arrangementsvc"
	"arrangement/internal/ports/output"
)

var _ output.EmployeeDirectory = (*Client)(nil)

const employeeQuery = "?IncludeNotStarted=false&IncludeResigned=false&IncludeStillingsgrad=false&IncludeRoles=false&IncludePersonellResponsible=false"

// Client reads name, e-mail and department from the employee service.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  arrangementsvc.TokenSource
	log     *zerolog.Logger
}

func NewClient(baseURL string, tokens arrangementsvc.TokenSource, timeout time.Duration, log *zerolog.Logger) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}, tokens: tokens, log: log}
}

func (c *Client) GetEmployee(ctx context.Context, employeeID int) (entities.Employee, error) {
	var emp entities.Employee
	path := "/v2/employees/" + strconv.Itoa(employeeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+employeeQuery, nil)
	if err != nil {
		return emp, err
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.tokens.AccessToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return emp, fmt.Errorf("get employee %d: %w", employeeID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return emp, &arrangementsvc.APIError{Method: http.MethodGet, Path: path, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(&emp); err != nil {
		return emp, fmt.Errorf("decode employee %d: %w", employeeID, err)
	}
	c.log.Debug().Int("employee_id", employeeID).Msg("employee loaded")
	return emp, nil
}
