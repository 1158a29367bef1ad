package admins

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/Manushivuz/IISPPR-MainSite/internal/apperr"
)

// Service encapsulates admin account logic
type Service struct {
	repo Repository
	cost int
}

func NewService(r Repository) *Service {
	return &Service{repo: r, cost: bcrypt.DefaultCost}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Admin, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation("All fields are required")
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("Admin already exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a := &Admin{Username: username, Email: email, PasswordHash: string(hash), Role: RoleAdmin}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, apperr.Conflict("Admin already exists")
		}
		return nil, err
	}
	return a, nil
}

// Login checks credentials: unknown email is NotFound, a wrong password Unauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (*Admin, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}
	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("Admin not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	return a, nil
}

// Get resolves the admin behind a session.
func (s *Service) Get(ctx context.Context, id string) (*Admin, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("Admin not found")
	}
	a, err := s.repo.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("Admin not found")
	}
	return a, nil
}
