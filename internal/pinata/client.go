// Package pinata talks to the Pinata pinning API, the content-addressing
// collaborator certificates are anchored through.
package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/devprosvn/devpros-achievo/internal/config"
)

// PinResult is the content address assigned by a successful pin.
type PinResult struct {
	Hash string `json:"ipfsHash"`
	URL  string `json:"ipfsUrl"`
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

type Client struct {
	http       *resty.Client
	gateway    *resty.Client
	gatewayURL string
}

// NewClient builds a Pinata client from configuration. Authentication
// headers mirror what the Pinata API accepts: key/secret pair and a JWT
// bearer token; whichever is configured is sent.
func NewClient(cfg config.PinataConfig) *Client {
	httpClient := resty.New().SetBaseURL(cfg.BaseURL)
	if cfg.APIKey != "" {
		httpClient.SetHeader("pinata_api_key", cfg.APIKey)
		httpClient.SetHeader("pinata_secret_api_key", cfg.APISecret)
	}
	if cfg.JWT != "" {
		httpClient.SetAuthToken(cfg.JWT)
	}
	return &Client{
		http:       httpClient,
		gateway:    resty.New().SetBaseURL(cfg.GatewayURL),
		gatewayURL: cfg.GatewayURL,
	}
}

// PinJSON pins an arbitrary document under the given pin name and returns
// its content address.
func (c *Client) PinJSON(ctx context.Context, name string, content any) (*PinResult, error) {
	body := map[string]any{
		"pinataContent": content,
		"pinataMetadata": map[string]any{
			"name": name,
		},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/pinning/pinJSONToIPFS")
	if err != nil {
		return nil, fmt.Errorf("pin JSON %q: %w", name, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("pin JSON %q: pinata returned %s", name, resp.Status())
	}

	hash, err := decodePinResponse(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("pin JSON %q: %w", name, err)
	}
	return c.result(hash), nil
}

// PinFile pins raw bytes as a file under the given pin name.
func (c *Client) PinFile(ctx context.Context, name string, data []byte) (*PinResult, error) {
	meta, err := json.Marshal(map[string]any{"name": name})
	if err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", name, bytes.NewReader(data)).
		SetMultipartField("pinataMetadata", "", "application/json", bytes.NewReader(meta)).
		Post("/pinning/pinFileToIPFS")
	if err != nil {
		return nil, fmt.Errorf("pin file %q: %w", name, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("pin file %q: pinata returned %s", name, resp.Status())
	}

	hash, err := decodePinResponse(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("pin file %q: %w", name, err)
	}
	return c.result(hash), nil
}

// decodePinResponse parses a pin response body itself rather than
// trusting the response Content-Type: the API has been seen answering
// with text/plain. A 200 without an IpfsHash is an error, never an
// empty address.
func decodePinResponse(body []byte) (string, error) {
	var result pinResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.IpfsHash == "" {
		return "", errors.New("response carries no IpfsHash")
	}
	return result.IpfsHash, nil
}

// Fetch retrieves pinned content back through the public gateway.
func (c *Client) Fetch(ctx context.Context, hash string) ([]byte, error) {
	resp, err := c.gateway.R().
		SetContext(ctx).
		Get("/" + hash)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", hash, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: gateway returned %s", hash, resp.Status())
	}
	return resp.Body(), nil
}

func (c *Client) result(hash string) *PinResult {
	return &PinResult{
		Hash: hash,
		URL:  c.gatewayURL + "/" + hash,
	}
}
