package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

const defaultCacheTTL = 5 * time.Minute

// VaultClient reads secrets from Azure Key Vault
type VaultClient struct {
	client    *azsecrets.Client
	vaultName string
	logger    *zap.Logger
}

// NewVaultClient authenticates with DefaultAzureCredential, which covers
// environment credentials, managed identity and the Azure CLI.
func NewVaultClient(vaultName string, logger *zap.Logger) (*VaultClient, error) {
	if vaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		logger.Error("Failed to create Azure credential", zap.Error(err))
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", vaultName)
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		logger.Error("Failed to create Key Vault client", zap.Error(err))
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	logger.Info("Azure Key Vault client initialized", zap.String("vault_url", vaultURL))
	return &VaultClient{client: client, vaultName: vaultName, logger: logger}, nil
}

// Fetch retrieves the latest version of a secret
func (v *VaultClient) Fetch(ctx context.Context, name string) (string, error) {
	resp, err := v.client.GetSecret(ctx, name, "", nil)
	if err != nil {
		v.logger.Error("Failed to get secret from Key Vault",
			zap.String("secret_name", name),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to get secret '%s': %w", name, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret '%s' has no value", name)
	}
	return *resp.Value, nil
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// CachedFetcher memoizes successful lookups for a fixed TTL
type CachedFetcher struct {
	next  Fetcher
	ttl   time.Duration
	now   func() time.Time
	mu    sync.Mutex
	cache map[string]cachedSecret
}

// NewCachedFetcher wraps next. A zero ttl selects five minutes.
func NewCachedFetcher(next Fetcher, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedFetcher{next: next, ttl: ttl, now: time.Now, cache: make(map[string]cachedSecret)}
}

// Fetch returns a cached value when fresh and otherwise asks the wrapped fetcher
func (c *CachedFetcher) Fetch(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	if hit, ok := c.cache[name]; ok && c.now().Before(hit.expiresAt) {
		c.mu.Unlock()
		return hit.value, nil
	}
	c.mu.Unlock()

	value, err := c.next.Fetch(ctx, name)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.cache[name] = cachedSecret{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

