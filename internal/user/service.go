package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/albaqer/gemstone-ecom/internal/auth"
	pb "github.com/albaqer/gemstone-ecom/internal/userpb"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type TokenIssuer interface {
	Issue(a auth.Actor) (string, error)
}

// Service owns accounts. It serves the user directory over gRPC and backs
// the HTTP account endpoints.
type Service struct {
	pb.UnimplementedUserDirectoryServer
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// ValidateUser (exists by id)
func (s *Service) ValidateUser(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	_, err := s.repo.GetByID(ctx, in.GetValue())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return wrapperspb.Bool(false), nil
		}
		return nil, status.Errorf(codes.Internal, "validate error: %v", err)
	}
	return wrapperspb.Bool(true), nil
}

func (s *Service) GetUserRole(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	u, err := s.repo.GetByID(ctx, in.GetValue())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, status.Error(codes.NotFound, "user not found")
		}
		return nil, status.Errorf(codes.Internal, "get error: %v", err)
	}
	return wrapperspb.String(string(u.Role)), nil
}

// Register always creates customers; roles are granted by an admin.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         auth.RoleCustomer,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Info().Str("user_id", u.ID).Msg("user registered")
	return u, nil
}

func (s *Service) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}
	tok, err := s.tokens.Issue(auth.Actor{ID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: tok, User: u}, nil
}

func (s *Service) DeliveryMen(ctx context.Context) ([]User, error) {
	return s.repo.ListByRole(ctx, auth.RoleDeliveryMan)
}

func (s *Service) ChangeRole(ctx context.Context, id, role string) (*User, error) {
	r, err := auth.ParseRole(role)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateRole(ctx, id, r)
}
