package service

import (
	"context"
	"strings"
	"time"

	"legalflow/internal/export"
	"legalflow/internal/model"
	"legalflow/internal/repository"
)

// ProfileService reads and updates the user profile
type ProfileService struct {
	users    repository.UserRepo
	exporter RowSender
	now      func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(users repository.UserRepo) *ProfileService {
	return &ProfileService{users: users, now: time.Now}
}

// SetExporter sets where profile updates are copied
func (s *ProfileService) SetExporter(e RowSender) {
	s.exporter = e
}

func (s *ProfileService) Get(ctx context.Context, email string) (*model.Profile, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return &user.Profile, nil
}

// Save replaces the profile and exports the updated row
func (s *ProfileService) Save(ctx context.Context, email string, p model.Profile) (*model.Profile, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	user.Profile = model.Profile{
		Name:      strings.TrimSpace(p.Name),
		Company:   strings.TrimSpace(p.Company),
		Position:  strings.TrimSpace(p.Position),
		Phone:     strings.TrimSpace(p.Phone),
		Industry:  strings.TrimSpace(p.Industry),
		Employees: strings.TrimSpace(p.Employees),
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if s.exporter != nil {
		s.exporter.Send(export.RowFromUser(user, s.now()))
	}
	return &user.Profile, nil
}
