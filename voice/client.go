package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

const DefaultAgentURL = "https://api.elevenlabs.io/v1/convai/agents/create"

var httpDo = func(req *http.Request) (*http.Response, error) {
	return http.DefaultClient.Do(req)
}

// Provisioner creates (or reuses) a conversational voice agent with the
// speech provider, going through the AgentCache first.
type Provisioner struct {
	Cache     *AgentCache
	AgentURL  string // Optional: custom API endpoint
	APIKeyEnv string // Optional: env var name for API key (defaults to ELEVENLABS_API_KEY)
}

type createAgentRequest struct {
	Name string `json:"name"`
}

type createAgentResponse struct {
	AgentID string `json:"agent_id"`
}

// GetOrCreate returns the cached agent id for key, provisioning a fresh
// agent when the cache misses or the entry has expired.
func (p *Provisioner) GetOrCreate(ctx context.Context, key string) (string, error) {
	if id, ok := p.Cache.Get(key); ok {
		return id, nil
	}

	apiKeyEnv := p.APIKeyEnv
	if apiKeyEnv == "" {
		apiKeyEnv = "ELEVENLABS_API_KEY"
	}
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return "", fmt.Errorf("voice agent provisioning is not configured: %s is not set", apiKeyEnv)
	}

	endpoint := p.AgentURL
	if endpoint == "" {
		endpoint = DefaultAgentURL
	}

	jsonBytes, err := json.Marshal(createAgentRequest{Name: "mailpilot-" + key})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", apiKey)

	resp, err := httpDo(req)
	if err != nil {
		return "", fmt.Errorf("agent provisioning failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("agent provisioning failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var created createAgentResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if created.AgentID == "" {
		return "", fmt.Errorf("agent provisioning returned no agent id")
	}

	p.Cache.Put(key, created.AgentID)
	return created.AgentID, nil
}
