package middleware

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/squadledger/internal/auth"
	"github.com/mmynk/squadledger/internal/models"
)

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	token, err := jwtManager.Generate("Alice@Example.com", "Alice", "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantErr bool
	}{
		{name: "valid bearer", header: "Bearer " + token},
		{name: "lowercase scheme", header: "bearer " + token},
		{name: "missing header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic " + token, wantErr: true},
		{name: "no token", header: "Bearer ", wantErr: true},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen models.Member
			next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				seen, _ = Identity(ctx)
				return connect.NewResponse(&struct{}{}), nil
			}

			req := connect.NewRequest(&struct{}{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := RequireAuth(jwtManager)(next)(context.Background(), req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
				assert.Empty(t, seen.ID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", seen.ID)
			assert.Equal(t, "Alice", seen.Name)
		})
	}
}

func TestIdentity(t *testing.T) {
	_, ok := Identity(context.Background())
	assert.False(t, ok)
	assert.Empty(t, CallerID(context.Background()))

	ctx := WithIdentity(context.Background(), models.Member{ID: "bob@example.com"})
	member, ok := Identity(ctx)
	assert.True(t, ok)
	assert.Equal(t, "bob@example.com", member.ID)
	assert.Equal(t, "bob@example.com", CallerID(ctx))
}

func TestLoggingInterceptorPassesThrough(t *testing.T) {
	wantErr := connect.NewError(connect.CodeNotFound, models.ErrNotFound)
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, wantErr
	}

	_, err := LoggingInterceptor()(next)(context.Background(), connect.NewRequest(&struct{}{}))
	assert.Same(t, wantErr, err)
}
