package auth

import (
	"context"
	"fmt"

	"github.com/auxroom/server/internal/core"
)

// Static maps fixed tokens to identities. Test and local-dev use only.
type Static struct {
	tokens map[string]core.Identity
}

func NewStatic(tokens map[string]core.Identity) *Static {
	return &Static{tokens: tokens}
}

func (v *Static) Validate(_ context.Context, token string) (core.Identity, error) {
	ident, ok := v.tokens[token]
	if !ok {
		return core.Identity{}, fmt.Errorf("%w: unknown token", core.ErrAuthRequired)
	}
	return ident, nil
}
