package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/hogarlink/hogar/internal/clock"
	"github.com/hogarlink/hogar/internal/user/domain"
	"github.com/hogarlink/hogar/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minNameLen     = 2
	maxNameLen     = 50
	minPasswordLen = 6
	bcryptCost     = 12
)

var (
	emailPattern = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)
	phonePattern = regexp.MustCompile(`^[\+]?[1-9][\d]{0,15}$`)
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (domain.Profile, error) {
	now := s.clock.Now()

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)

	if err := validateName(firstName, domain.ErrInvalidName); err != nil {
		return domain.Profile{}, err
	}
	if err := validateName(lastName, domain.ErrInvalidSurname); err != nil {
		return domain.Profile{}, err
	}
	if !emailPattern.MatchString(email) {
		return domain.Profile{}, domain.ErrInvalidEmail
	}
	if !phonePattern.MatchString(phone) {
		return domain.Profile{}, domain.ErrInvalidPhone
	}
	if req.BirthDate.IsZero() || req.BirthDate.After(now) {
		return domain.Profile{}, domain.ErrInvalidBirthDate
	}
	if len(req.Password) < minPasswordLen {
		return domain.Profile{}, domain.ErrInvalidPassword
	}

	existing, err := s.repo.FindByEmailOrPhone(ctx, s.db, email, phone)
	if err != nil {
		return domain.Profile{}, err
	}
	if existing != nil {
		return domain.Profile{}, domain.ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return domain.Profile{}, err
	}

	user := domain.User{
		ID:           s.genID.Generate(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Phone:        phone,
		BirthDate:    req.BirthDate.UTC(),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Profile{}, domain.ErrAlreadyExists
		}
		return domain.Profile{}, err
	}

	s.log.Info("user created", zap.String("user_id", user.ID.String()))
	return user.Profile(now), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	userID, err := parseID(id)
	if err != nil {
		return domain.Profile{}, err
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	if user == nil {
		return domain.Profile{}, domain.ErrNotFound
	}
	return user.Profile(s.clock.Now()), nil
}

func (s *Service) List(ctx context.Context) ([]domain.Profile, error) {
	users, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	profiles := make([]domain.Profile, 0, len(users))
	for _, user := range users {
		if user == nil {
			continue
		}
		profiles = append(profiles, user.Profile(now))
	}
	return profiles, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateUserRequest) (domain.Profile, error) {
	userID, err := parseID(req.ID)
	if err != nil {
		return domain.Profile{}, err
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	if user == nil {
		return domain.Profile{}, domain.ErrNotFound
	}

	now := s.clock.Now()

	if req.FirstName != nil {
		firstName := strings.TrimSpace(*req.FirstName)
		if err := validateName(firstName, domain.ErrInvalidName); err != nil {
			return domain.Profile{}, err
		}
		user.FirstName = firstName
	}
	if req.LastName != nil {
		lastName := strings.TrimSpace(*req.LastName)
		if err := validateName(lastName, domain.ErrInvalidSurname); err != nil {
			return domain.Profile{}, err
		}
		user.LastName = lastName
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if !emailPattern.MatchString(email) {
			return domain.Profile{}, domain.ErrInvalidEmail
		}
		user.Email = email
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if !phonePattern.MatchString(phone) {
			return domain.Profile{}, domain.ErrInvalidPhone
		}
		user.Phone = phone
	}
	if req.BirthDate != nil {
		if req.BirthDate.IsZero() || req.BirthDate.After(now) {
			return domain.Profile{}, domain.ErrInvalidBirthDate
		}
		user.BirthDate = req.BirthDate.UTC()
	}

	user.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Profile{}, domain.ErrAlreadyExists
		}
		return domain.Profile{}, err
	}
	return user.Profile(now), nil
}

func (s *Service) Delete(ctx context.Context, id string) (domain.Profile, error) {
	userID, err := parseID(id)
	if err != nil {
		return domain.Profile{}, err
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	if user == nil {
		return domain.Profile{}, domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, userID); err != nil {
		return domain.Profile{}, err
	}

	s.log.Info("user deleted", zap.String("user_id", userID.String()))
	return user.Profile(s.clock.Now()), nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.Profile, error) {
	if req.Password == "" {
		return domain.Profile{}, domain.ErrInvalidPassword
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)
	if email == "" && phone == "" {
		return domain.Profile{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmailOrPhone(ctx, s.db, email, phone)
	if err != nil {
		return domain.Profile{}, err
	}
	if user == nil {
		return domain.Profile{}, domain.ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return domain.Profile{}, domain.ErrInvalidCredentials
	}

	s.log.Info("login succeeded", zap.String("user_id", user.ID.String()))
	return user.Profile(s.clock.Now()), nil
}

func validateName(value string, invalid error) error {
	if len(value) < minNameLen || len(value) > maxNameLen {
		return invalid
	}
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
