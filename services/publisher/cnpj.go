package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/S204-Inatel-2025-2/AgendaFacil/models"
)

const DefaultCNPJBaseURL = "https://brasilapi.com.br/api/cnpj/v1"

// CNPJRecord is the subset of the BrasilAPI company record we keep.
type CNPJRecord struct {
	LegalName string `json:"razao_social"`
	TradeName string `json:"nome_fantasia"`
	Email     string `json:"email"`
	Phone     string `json:"ddd_telefone_1"`
}

// CNPJLookup resolves a fiscal identifier to a company record.
type CNPJLookup interface {
	Lookup(ctx context.Context, cnpj string) (*CNPJRecord, error)
}

// CNPJClient queries BrasilAPI over HTTP.
type CNPJClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewCNPJClient(baseURL string) *CNPJClient {
	if baseURL == "" {
		baseURL = DefaultCNPJBaseURL
	}
	return &CNPJClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *CNPJClient) Lookup(ctx context.Context, cnpj string) (*CNPJRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/"+cnpj, nil)
	if err != nil {
		return nil, fmt.Errorf("build cnpj request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cnpj lookup: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("cnpj %s: %w", cnpj, models.ErrNotFound)
	case resp.StatusCode == http.StatusBadRequest:
		return nil, fmt.Errorf("cnpj %s: %w", cnpj, models.ErrInvalidInput)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("cnpj lookup: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var record CNPJRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode cnpj response: %w", err)
	}
	return &record, nil
}

// NormalizeCNPJ strips punctuation and requires exactly 14 digits.
func NormalizeCNPJ(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 14 {
		return "", fmt.Errorf("%w: cnpj must have 14 digits", models.ErrInvalidInput)
	}
	return digits, nil
}
