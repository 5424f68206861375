// Package service implements the store-rating operations on top of the
// repositories, the aggregator, and access control.
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Clark-Hu/store-rating/internal/apperr"
	"github.com/Clark-Hu/store-rating/internal/auth"
	"github.com/Clark-Hu/store-rating/internal/repository"
)

// Options tunes service policy.
type Options struct {
	// AllowAdminSignup lets public registration choose the admin role.
	AllowAdminSignup bool
}

// Service wires repositories, token issuance and password hashing.
type Service struct {
	repo     *repository.Repository
	tokens   *auth.TokenManager
	hasher   auth.Hasher
	validate *validator.Validate
	logger   *logrus.Logger
	opts     Options

	dummyOnce sync.Once
	dummyHash string
}

// New constructs a Service.
func New(repo *repository.Repository, tokens *auth.TokenManager, hasher auth.Hasher, logger *logrus.Logger, opts Options) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Service{
		repo:     repo,
		tokens:   tokens,
		hasher:   hasher,
		validate: v,
		logger:   logger,
		opts:     opts,
	}
}

// Tokens exposes the token manager used for request authentication.
func (s *Service) Tokens() *auth.TokenManager { return s.tokens }

func (s *Service) check(input interface{}) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Internal("Failed to validate request", err)
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperr.Invalid(fmt.Sprintf("%s is required", field))
	case "email":
		return apperr.Invalid(fmt.Sprintf("%s must be a valid email address", field))
	case "min":
		return apperr.Invalid(fmt.Sprintf("%s must be at least %s characters long", field, fe.Param()))
	case "max":
		return apperr.Invalid(fmt.Sprintf("%s must be at most %s characters long", field, fe.Param()))
	case "oneof":
		return apperr.Invalid(fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", ")))
	default:
		return apperr.Invalid(fmt.Sprintf("%s is invalid", field))
	}
}

// validID reports whether id can reference a stored row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// trimmed returns nil for absent or blank values and the trimmed value otherwise.
func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
