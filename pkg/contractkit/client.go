package contractkit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
)

// Client talks to a running contractkit capability API.
type Client struct {
	client http.Client
	url    string
}

func New(url string) *Client {
	return &Client{
		client: http.Client{
			Timeout: 30 * time.Second,
		},
		url: strings.TrimSuffix(url, "/"),
	}
}

type operationRequest struct {
	Ref        string          `json:"ref"`
	Request    json.RawMessage `json:"request,omitempty"`
	Response   json.RawMessage `json:"response,omitempty"`
	StatusCode int             `json:"statusCode,omitempty"`
}

// WaitReady polls the readiness endpoint until the engine answers.
func (c *Client) WaitReady() error {
	return retry.Do(
		func() error {
			res, err := c.client.Get(c.url + "/ready")
			if err != nil {
				return err
			}
			defer res.Body.Close()
			if res.StatusCode != http.StatusOK {
				return fmt.Errorf("engine not ready, status %d", res.StatusCode)
			}
			return nil
		},
		retry.Attempts(10),
		retry.Delay(100*time.Millisecond),
	)
}

func (c *Client) ValidateContract(ref string) (*ValidationResult, error) {
	return c.validation("/contracts/validate", operationRequest{Ref: ref})
}

func (c *Client) ValidateRequestType(ref string) (*ValidationResult, error) {
	return c.validation("/contracts/validate-request-type", operationRequest{Ref: ref})
}

func (c *Client) ValidateResponseType(ref string) (*ValidationResult, error) {
	return c.validation("/contracts/validate-response-type", operationRequest{Ref: ref})
}

func (c *Client) ValidateRequest(ref string, request json.RawMessage) (*ValidationResult, error) {
	return c.validation("/contracts/match-request", operationRequest{Ref: ref, Request: request})
}

func (c *Client) ValidateResponse(ref string, response json.RawMessage, statusCode int) (*ValidationResult, error) {
	return c.validation("/contracts/match-response",
		operationRequest{Ref: ref, Response: response, StatusCode: statusCode})
}

func (c *Client) GenerateMockResponse(ref string, statusCode int) (*MockResult, error) {
	var result MockResult
	err := c.post("/contracts/mock-response", operationRequest{Ref: ref, StatusCode: statusCode}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Contracts() ([]string, error) {
	res, err := c.client.Get(c.url + "/contracts")
	if err != nil {
		return nil, errors.Wrap(err, "unable to list contracts")
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to list contracts, status %d", res.StatusCode)
	}
	var list ContractList
	if err := json.NewDecoder(res.Body).Decode(&list); err != nil {
		return nil, errors.Wrap(err, "unable to decode contract list")
	}
	return list.Contracts, nil
}

func (c *Client) validation(path string, req operationRequest) (*ValidationResult, error) {
	var result ValidationResult
	if err := c.post(path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) post(path string, req operationRequest, out interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "unable to marshal operation request")
	}

	res, err := c.client.Post(c.url+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.Wrapf(err, "unable to call %s", path)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("operation %s failed with status %d", path, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "unable to decode %s result", path)
	}
	return nil
}
