package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/bankauth/internal/api"
	"github.com/dmitrijs2005/bankauth/internal/common"
	"github.com/dmitrijs2005/bankauth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var whoAmIInfo = &grpc.UnaryServerInfo{FullMethod: api.AuthService_WhoAmI_FullMethodName}

func TestInterceptor_PublicMethod_AllowsWithoutToken(t *testing.T) {
	s := newServer(&fakeAuth{}, &fakeTokens{})

	info := &grpc.UnaryServerInfo{FullMethod: api.AuthService_Login_FullMethodName}
	handlerCalled := false

	h := func(ctx context.Context, req any) (any, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Fatal("handler was not called")
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
}

func TestInterceptor_WhoAmI_MissingToken(t *testing.T) {
	s := newServer(&fakeAuth{}, &fakeTokens{})

	h := func(ctx context.Context, req any) (any, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, whoAmIInfo, h)
	wantCode(t, err, codes.Unauthenticated)
	if status.Convert(err).Message() != "missing token" {
		t.Fatalf("expected 'missing token', got %q", status.Convert(err).Message())
	}
}

func TestInterceptor_WhoAmI_BadToken(t *testing.T) {
	tests := []struct {
		parseErr error
		msg      string
	}{
		{common.ErrInvalidToken, "invalid token"},
		{common.ErrTokenExpired, "token expired"},
	}

	for _, tt := range tests {
		s := newServer(&fakeAuth{}, &fakeTokens{parseErr: tt.parseErr})
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, "x"))

		_, err := s.accessTokenInterceptor(ctx, nil, whoAmIInfo, func(ctx context.Context, req any) (any, error) {
			t.Fatal("handler should not be called")
			return nil, nil
		})
		wantCode(t, err, codes.Unauthenticated)
		if status.Convert(err).Message() != tt.msg {
			t.Fatalf("expected %q, got %q", tt.msg, status.Convert(err).Message())
		}
	}
}

func TestInterceptor_WhoAmI_ValidTokenStoresClaims(t *testing.T) {
	issuer := auth.NewTokenIssuer([]byte("secret"), time.Minute)
	token, _, err := issuer.Issue("alice", "ROLE_USER", "id-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	s := newServer(&fakeAuth{}, issuer)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))

	var got *auth.Claims
	_, err = s.accessTokenInterceptor(ctx, nil, whoAmIInfo, func(ctx context.Context, req any) (any, error) {
		got, _ = claimsFromContext(ctx)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Subject != "alice" || got.UserID != "id-1" {
		t.Fatalf("claims not propagated: %+v", got)
	}
}

func TestStoreTimeoutInterceptor(t *testing.T) {
	s := newServer(&fakeAuth{}, &fakeTokens{})
	s.storeTimeout = 50 * time.Millisecond

	_, err := s.storeTimeoutInterceptor(context.Background(), nil, whoAmIInfo, func(ctx context.Context, req any) (any, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Fatal("expected deadline")
		}
		if time.Until(deadline) > 50*time.Millisecond {
			t.Fatalf("deadline too far: %v", time.Until(deadline))
		}
		return nil, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.storeTimeout = 0
	_, _ = s.storeTimeoutInterceptor(context.Background(), nil, whoAmIInfo, func(ctx context.Context, req any) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			t.Fatal("expected no deadline when timeout disabled")
		}
		return nil, nil
	})
}
