package model

import (
	"fmt"

	"github.com/Veraticus/finsight/internal/common"
)

// ProviderName identifies an analysis backend.
type ProviderName string

const (
	// ProviderLocal is the locally hosted model server.
	ProviderLocal ProviderName = "local-model"
	// ProviderHostedA is the first hosted model API.
	ProviderHostedA ProviderName = "hosted-model-a"
	// ProviderHostedB is the second hosted model API.
	ProviderHostedB ProviderName = "hosted-model-b"
	// ProviderFallback is the deterministic formula path.
	ProviderFallback ProviderName = "fallback"
)

// ProviderNames lists every provider in selection priority order.
var ProviderNames = []ProviderName{
	ProviderLocal,
	ProviderHostedA,
	ProviderHostedB,
	ProviderFallback,
}

// ParseProviderName validates a provider name.
func ParseProviderName(s string) (ProviderName, error) {
	for _, name := range ProviderNames {
		if string(name) == s {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", common.ErrUnknownProvider, s)
}
