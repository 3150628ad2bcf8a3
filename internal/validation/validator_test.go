package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/tooldexapp/tooldex-server/internal/errors"
	"github.com/tooldexapp/tooldex-server/internal/validation"
)

type TestRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=1024"`
	Name       string `json:"name" validate:"required"`
	WebsiteURL string `json:"website_url" validate:"omitempty,url"`
	Rating     int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := TestRequest{
		Email:      "test@example.com",
		Password:   "password123",
		Name:       "Test User",
		WebsiteURL: "https://example.com",
		Rating:     4,
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	//nolint:govet // fieldalignment: Minor memory optimization not worth the complexity in test code
	tests := []struct {
		name      string
		req       TestRequest
		wantField string
	}{
		{
			name: "missing required field",
			req: TestRequest{
				Email:    "test@example.com",
				Password: "password123",
				Name:     "", // Missing
			},
			wantField: "name",
		},
		{
			name: "invalid email",
			req: TestRequest{
				Email:    "not-an-email",
				Password: "password123",
				Name:     "Test",
			},
			wantField: "email",
		},
		{
			name: "password too short",
			req: TestRequest{
				Email:    "test@example.com",
				Password: "short",
				Name:     "Test",
			},
			wantField: "password",
		},
		{
			name: "invalid url",
			req: TestRequest{
				Email:      "test@example.com",
				Password:   "password123",
				Name:       "Test",
				WebsiteURL: "not a url",
			},
			wantField: "website_url",
		},
		{
			name: "rating out of range",
			req: TestRequest{
				Email:    "test@example.com",
				Password: "password123",
				Name:     "Test",
				Rating:   6,
			},
			wantField: "rating",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var domainErr *domainerrors.Error
			if assert.True(t, domainerrors.As(err, &domainErr)) {
				assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
				details, ok := domainErr.Details.(map[string]string)
				if assert.True(t, ok) {
					assert.Contains(t, details, tt.wantField)
				}
			}
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	req := TestRequest{
		Email:    "",
		Password: "password123",
		Name:     "Test",
	}

	err := v.Validate(req)
	assert.Error(t, err)

	var domainErr *domainerrors.Error
	if assert.True(t, domainerrors.As(err, &domainErr)) {
		details, ok := domainErr.Details.(map[string]string)
		if assert.True(t, ok) {
			// Should use JSON tag name "email", not struct field name "Email"
			assert.Contains(t, details, "email")
			assert.NotContains(t, details, "Email")
		}
	}
}
