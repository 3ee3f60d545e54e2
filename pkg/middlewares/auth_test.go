package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/entitygraph/core/pkg/auth"
	"github.com/entitygraph/core/pkg/authz"
	"github.com/entitygraph/core/pkg/properties"
	"github.com/stretchr/testify/assert"
)

func TestAuth(t *testing.T) {
	testIdentity := &auth.Identity{
		AccountID: properties.NewUUID(),
		Name:      "test-user",
		Role:      auth.RoleLead,
	}

	tests := []struct {
		name               string
		authHeader         string
		authenticatorSetup func() *mockAuthenticator
		expectedStatus     int
		expectIdentity     bool
		expectedToken      string
	}{
		{
			name:       "Valid Bearer token",
			authHeader: "Bearer valid-token",
			authenticatorSetup: func() *mockAuthenticator {
				return &mockAuthenticator{identity: testIdentity}
			},
			expectedStatus: http.StatusOK,
			expectIdentity: true,
			expectedToken:  "valid-token",
		},
		{
			name:       "Missing Authorization header",
			authHeader: "",
			authenticatorSetup: func() *mockAuthenticator {
				return &mockAuthenticator{}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "Invalid token format - no Bearer prefix",
			authHeader: "invalid-token",
			authenticatorSetup: func() *mockAuthenticator {
				return &mockAuthenticator{}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:       "Authentication error",
			authHeader: "Bearer invalid-token",
			authenticatorSetup: func() *mockAuthenticator {
				return &mockAuthenticator{err: errors.New("invalid token")}
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:       "Nil identity returned",
			authHeader: "Bearer valid-token",
			authenticatorSetup: func() *mockAuthenticator {
				return &mockAuthenticator{}
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := tt.authenticatorSetup()

			var capturedIdentity *auth.Identity
			var identityFound bool
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.expectIdentity {
					capturedIdentity = auth.MustGetIdentity(r.Context())
					identityFound = true
				}
				w.WriteHeader(http.StatusOK)
			})

			middleware := Auth(mockAuth)(testHandler)

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			w := httptest.NewRecorder()
			middleware.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectIdentity {
				assert.True(t, identityFound)
				assert.Equal(t, testIdentity, capturedIdentity)
				assert.True(t, mockAuth.called)
				assert.Equal(t, tt.expectedToken, mockAuth.receivedToken)
			}
		})
	}
}

func TestAuthzFromExtractor(t *testing.T) {
	testIdentity := &auth.Identity{AccountID: properties.NewUUID(), Name: "test-user", Role: auth.RoleLead}

	tests := []struct {
		name            string
		extractorSetup  func() ObjectScopeExtractor
		authorizerSetup func() *mockAuthorizer
		expectedStatus  int
	}{
		{
			name: "Successful authorization",
			extractorSetup: func() ObjectScopeExtractor {
				return func(r *http.Request) (authz.ObjectScope, error) {
					return &authz.AllwaysMatchObjectScope{}, nil
				}
			},
			authorizerSetup: func() *mockAuthorizer { return &mockAuthorizer{} },
			expectedStatus:  http.StatusOK,
		},
		{
			name: "Extractor error",
			extractorSetup: func() ObjectScopeExtractor {
				return func(r *http.Request) (authz.ObjectScope, error) {
					return nil, errors.New("extraction failed")
				}
			},
			authorizerSetup: func() *mockAuthorizer { return &mockAuthorizer{} },
			expectedStatus:  http.StatusForbidden,
		},
		{
			name: "Authorization denied",
			extractorSetup: func() ObjectScopeExtractor {
				return func(r *http.Request) (authz.ObjectScope, error) {
					return &authz.AllwaysMatchObjectScope{}, nil
				}
			},
			authorizerSetup: func() *mockAuthorizer {
				return &mockAuthorizer{err: errors.New("access denied")}
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := tt.extractorSetup()
			mockAuthorizer := tt.authorizerSetup()

			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			middleware := AuthzFromExtractor(authz.ObjectTypeClass, authz.ActionRead, mockAuthorizer, extractor)(testHandler)

			req := httptest.NewRequest("GET", "/test", nil)
			ctx := auth.WithIdentity(req.Context(), testIdentity)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			middleware.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestSimpleScopeExtractor(t *testing.T) {
	extractor := SimpleScopeExtractor()

	req := httptest.NewRequest("GET", "/test", nil)
	scope, err := extractor(req)

	assert.NoError(t, err)
	assert.IsType(t, &authz.AllwaysMatchObjectScope{}, scope)
}

func TestAuthzSimple(t *testing.T) {
	testIdentity := &auth.Identity{AccountID: properties.NewUUID(), Name: "test-user", Role: auth.RoleLead}

	tests := []struct {
		name            string
		authorizerSetup func() *mockAuthorizer
		expectedStatus  int
	}{
		{
			name:            "Successful simple authorization",
			authorizerSetup: func() *mockAuthorizer { return &mockAuthorizer{} },
			expectedStatus:  http.StatusOK,
		},
		{
			name: "Authorization denied",
			authorizerSetup: func() *mockAuthorizer {
				return &mockAuthorizer{err: errors.New("access denied")}
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuthorizer := tt.authorizerSetup()

			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			middleware := AuthzSimple(authz.ObjectTypeClass, authz.ActionRead, mockAuthorizer)(testHandler)

			req := httptest.NewRequest("GET", "/test", nil)
			ctx := auth.WithIdentity(req.Context(), testIdentity)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			middleware.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestMustHaveRoles(t *testing.T) {
	leadIdentity := &auth.Identity{AccountID: properties.NewUUID(), Name: "lead-user", Role: auth.RoleLead}
	signedIdentity := &auth.Identity{AccountID: properties.NewUUID(), Name: "signed-user", Role: auth.RoleSigned}

	tests := []struct {
		name           string
		identity       *auth.Identity
		requiredRoles  []auth.Role
		expectedStatus int
		expectSuccess  bool
	}{
		{
			name:           "Lead has lead role - should pass",
			identity:       leadIdentity,
			requiredRoles:  []auth.Role{auth.RoleLead},
			expectedStatus: http.StatusOK,
			expectSuccess:  true,
		},
		{
			name:           "Signed has signed role - should pass",
			identity:       signedIdentity,
			requiredRoles:  []auth.Role{auth.RoleSigned},
			expectedStatus: http.StatusOK,
			expectSuccess:  true,
		},
		{
			name:           "Signed has one of multiple required roles - should pass",
			identity:       signedIdentity,
			requiredRoles:  []auth.Role{auth.RoleLead, auth.RoleSigned},
			expectedStatus: http.StatusOK,
			expectSuccess:  true,
		},
		{
			name:           "Signed does not have lead role - should fail",
			identity:       signedIdentity,
			requiredRoles:  []auth.Role{auth.RoleLead},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Empty roles list - should fail",
			identity:       leadIdentity,
			requiredRoles:  []auth.Role{},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("success"))
			})

			handler := MustHaveRoles(tt.requiredRoles...)(nextHandler)

			req := httptest.NewRequest("GET", "/test", nil)
			ctx := auth.WithIdentity(req.Context(), tt.identity)
			req = req.WithContext(ctx)

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectSuccess {
				assert.Equal(t, "success", rr.Body.String())
			} else {
				assert.NotEqual(t, "success", rr.Body.String())
			}
		})
	}
}

func TestMustHaveRoles_PanicOnMissingIdentity(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := MustHaveRoles(auth.RoleLead)(nextHandler)

	req := httptest.NewRequest("GET", "/test", nil)
	rr := httptest.NewRecorder()

	assert.Panics(t, func() {
		handler.ServeHTTP(rr, req)
	})
}

// Mock implementations for testing

type mockAuthenticator struct {
	identity      *auth.Identity
	err           error
	called        bool
	receivedCtx   context.Context
	receivedToken string
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	m.called = true
	m.receivedCtx = ctx
	m.receivedToken = token
	return m.identity, m.err
}

func (m *mockAuthenticator) Health(ctx context.Context) error {
	return nil
}

type mockAuthorizer struct {
	err error
}

func (m *mockAuthorizer) Authorize(identity *auth.Identity, action authz.Action, object authz.ObjectType, objectScope authz.ObjectScope) error {
	return m.err
}
