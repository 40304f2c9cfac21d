package zoho

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	httpx "finportal/internal/common/http"
)

// CRMClient creates and looks up leads in Zoho CRM.
type CRMClient struct {
	oauthToken string
	baseURL    string
	httpClient *httpx.Client
}

// Lead is the subset of the Zoho Leads module the portal fills in.
type Lead struct {
	ID          string `json:"id,omitempty"`
	FirstName   string `json:"First_Name,omitempty"`
	LastName    string `json:"Last_Name"`
	Email       string `json:"Email,omitempty"`
	Mobile      string `json:"Mobile,omitempty"`
	Company     string `json:"Company,omitempty"`
	Source      string `json:"Lead_Source,omitempty"`
	Status      string `json:"Lead_Status,omitempty"`
	Description string `json:"Description,omitempty"`
}

type upsertResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"data"`
}

// APIError is a non-2xx response from Zoho.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("zoho status %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the request may succeed if retried.
func (e *APIError) Transient() bool {
	return httpx.IsTransientStatus(e.StatusCode)
}

func NewCRMClient(baseURL, oauthToken string, httpClient *httpx.Client) *CRMClient {
	if httpClient == nil {
		httpClient = httpx.NewClient(30 * time.Second)
	}
	return &CRMClient{
		oauthToken: oauthToken,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// CreateLead inserts lead and returns the Zoho record id.
func (c *CRMClient) CreateLead(ctx context.Context, lead *Lead) (string, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"data": []Lead{*lead},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal lead: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/Leads", payload)
	if err != nil {
		return "", err
	}

	var resp upsertResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("no data in response")
	}
	if resp.Data[0].Status != "success" {
		return "", fmt.Errorf("lead creation failed: %s", resp.Data[0].Message)
	}
	return resp.Data[0].Details.ID, nil
}

// SearchLeadsByEmail returns existing leads with the given email. Zoho
// answers 204 when nothing matches.
func (c *CRMClient) SearchLeadsByEmail(ctx context.Context, email string) ([]Lead, error) {
	endpoint := fmt.Sprintf("%s/Leads/search?email=%s", c.baseURL, url.QueryEscape(email))

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}

	var result struct {
		Data []Lead `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Data, nil
}

func (c *CRMClient) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+c.oauthToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
