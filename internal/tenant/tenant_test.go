package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "default", FromContext(ctx, "default"))
	assert.Equal(t, "acme", FromContext(WithID(ctx, "acme"), "default"))
	assert.Equal(t, "default", FromContext(WithID(ctx, ""), "default"))
}
