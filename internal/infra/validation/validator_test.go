package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/app/middleware"
)

var _ middleware.Validator = (*StructValidator)(nil)

type taggedMessage struct {
	Guests int `validate:"required,min=1"`
}

func TestStructValidatorChecksTags(t *testing.T) {
	v := NewStructValidator()
	ctx := context.Background()

	require.NoError(t, v.Validate(ctx, taggedMessage{Guests: 2}))
	require.NoError(t, v.Validate(ctx, &taggedMessage{Guests: 2}))

	assert.Error(t, v.Validate(ctx, taggedMessage{}))
	assert.Error(t, v.Validate(ctx, &taggedMessage{Guests: -1}))
}

func TestStructValidatorPassesThroughNonStructs(t *testing.T) {
	v := NewStructValidator()
	ctx := context.Background()

	assert.NoError(t, v.Validate(ctx, nil))
	assert.NoError(t, v.Validate(ctx, (*taggedMessage)(nil)))
	assert.NoError(t, v.Validate(ctx, "plain string"))
	assert.NoError(t, v.Validate(ctx, 42))
}
