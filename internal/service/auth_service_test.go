package service_test

import (
	"context"
	"testing"

	"github.com/dom/personal-services-api/internal/domain"
	"github.com/dom/personal-services-api/internal/repository/postgres"
	"github.com/dom/personal-services-api/internal/service"
	"github.com/dom/personal-services-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	authService, err := service.NewAuthService(repos.User, bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("loginuser").
		WithPassword("correctpassword").
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		input   service.LoginInput
		wantErr error
	}{
		{
			name: "successful login",
			input: service.LoginInput{
				Username: "loginuser",
				Password: rawPassword,
			},
		},
		{
			name: "wrong password",
			input: service.LoginInput{
				Username: "loginuser",
				Password: "wrongpassword",
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name: "unknown username",
			input: service.LoginInput{
				Username: "nobody",
				Password: rawPassword,
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name: "username differs in case",
			input: service.LoginInput{
				Username: "LoginUser",
				Password: rawPassword,
			},
			wantErr: domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := authService.Login(ctx, tt.input)

			if tt.wantErr != nil {
				// unknown user and bad password must be the same error value
				assert.Equal(t, tt.wantErr, err)
				assert.Nil(t, identity)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, user.ID, identity.UserID)
			assert.Equal(t, user.Username, identity.Username)
		})
	}
}

func TestAuthService_Provision(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	authService, err := service.NewAuthService(repos.User, bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.ProvisionInput
		setup   func()
		wantErr error
	}{
		{
			name:  "new user",
			input: service.ProvisionInput{Username: " ann ", Password: "secret"},
		},
		{
			name:  "duplicate username",
			input: service.ProvisionInput{Username: "taken", Password: "secret"},
			setup: func() {
				testutil.NewUserBuilder().WithUsername("taken").Build(t, testDB.DB)
			},
			wantErr: domain.ErrUsernameTaken,
		},
		{
			name:    "empty username",
			input:   service.ProvisionInput{Username: "  ", Password: "secret"},
			wantErr: domain.ErrUsernameEmpty,
		},
		{
			name:    "empty password",
			input:   service.ProvisionInput{Username: "bob", Password: ""},
			wantErr: domain.ErrPasswordEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testDB.Truncate(t)
			if tt.setup != nil {
				tt.setup()
			}

			user, err := authService.Provision(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "ann", user.Username)
			assert.NotEqual(t, tt.input.Password, user.PasswordHash)

			identity, err := authService.Login(ctx, service.LoginInput{Username: "ann", Password: "secret"})
			require.NoError(t, err)
			assert.Equal(t, user.ID, identity.UserID)
		})
	}
}
