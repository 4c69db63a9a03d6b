// Package adapters holds the outbound clients that pull raw payloads from
// external registries. Each fetcher returns the provider's response body
// untouched; normalization happens later so the stored evidence is exactly
// what the provider said.
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// PayloadFetcher pulls one raw payload by the provider-native identifier
// (LEI for GLEIF, company number for Companies House).
type PayloadFetcher interface {
	Fetch(ctx context.Context, identifier string) (json.RawMessage, error)
}

const maxPayloadBytes = 4 << 20

// httpFetcher is the shared GET-a-JSON-document client under the
// provider-specific constructors.
type httpFetcher struct {
	provider string
	client   *http.Client
	buildURL func(identifier string) string
	prepare  func(req *http.Request)
}

// NewGLEIFFetcher fetches LEI records from the GLEIF API.
func NewGLEIFFetcher(baseURL string, client *http.Client) PayloadFetcher {
	return &httpFetcher{
		provider: "gleif",
		client:   orDefault(client),
		buildURL: func(lei string) string {
			return fmt.Sprintf("%s/api/v1/lei-records/%s", baseURL, url.PathEscape(lei))
		},
		prepare: func(req *http.Request) {
			req.Header.Set("Accept", "application/vnd.api+json")
		},
	}
}

// NewCompaniesHouseFetcher fetches company profiles from the Companies House
// API. The API key is passed as a basic-auth username per their scheme.
func NewCompaniesHouseFetcher(baseURL, apiKey string, client *http.Client) PayloadFetcher {
	return &httpFetcher{
		provider: "companies_house",
		client:   orDefault(client),
		buildURL: func(number string) string {
			return fmt.Sprintf("%s/company/%s", baseURL, url.PathEscape(number))
		},
		prepare: func(req *http.Request) {
			req.SetBasicAuth(apiKey, "")
			req.Header.Set("Accept", "application/json")
		},
	}
}

func orDefault(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (f *httpFetcher) Fetch(ctx context.Context, identifier string) (json.RawMessage, error) {
	if identifier == "" {
		return nil, NewProviderError(ErrorBadData, f.provider, "identifier is required", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.buildURL(identifier), nil)
	if err != nil {
		return nil, NewProviderError(ErrorInternal, f.provider, "build request", err)
	}
	f.prepare(req)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewProviderError(ErrorTimeout, f.provider, "request timed out", err)
		}
		return nil, NewProviderError(ErrorProviderOutage, f.provider, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewProviderError(ErrorNotFound, f.provider, "record not found", nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewProviderError(ErrorAuthentication, f.provider, resp.Status, nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewProviderError(ErrorRateLimited, f.provider, resp.Status, nil)
	case resp.StatusCode >= 500:
		return nil, NewProviderError(ErrorProviderOutage, f.provider, resp.Status, nil)
	default:
		return nil, NewProviderError(ErrorBadData, f.provider, "unexpected status "+resp.Status, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, NewProviderError(ErrorProviderOutage, f.provider, "read response", err)
	}
	if !json.Valid(body) {
		return nil, NewProviderError(ErrorBadData, f.provider, "response is not valid JSON", nil)
	}
	return body, nil
}
