package service

import (
	"context"

	"lcbridge/internal/assist/model"
	"lcbridge/internal/assist/repository"
	appErr "lcbridge/pkg/errors"
	"lcbridge/pkg/utils/logger"

	"go.uber.org/zap"
)

// SessionService manages the operator supplied session override.
type SessionService struct {
	store repository.CredentialStore
}

func NewSessionService(store repository.CredentialStore) *SessionService {
	return &SessionService{store: store}
}

// Status reports the stored override. Environment fallbacks are not shown.
func (s *SessionService) Status(ctx context.Context) (*model.SessionStatus, error) {
	cred, err := s.store.Override(ctx)
	if err != nil {
		return nil, err
	}
	cred = cred.Trimmed()
	return &model.SessionStatus{
		Connected: cred.Complete(),
		Session:   model.StringPtr(cred.Session),
		CSRFToken: model.StringPtr(cred.CSRFToken),
	}, nil
}

// Set replaces both cookies at once.
func (s *SessionService) Set(ctx context.Context, cred model.Credential) error {
	cred = cred.Trimmed()
	if cred.Session == "" {
		return appErr.ValidationError("leetcode_session", "required")
	}
	if cred.CSRFToken == "" {
		return appErr.ValidationError("csrf_token", "required")
	}
	if err := s.store.Set(ctx, cred); err != nil {
		return err
	}
	logger.Info(ctx, "leetcode session override updated", zap.Int("session_len", len(cred.Session)))
	return nil
}

// Clear drops the override so environment credentials apply again.
func (s *SessionService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	logger.Info(ctx, "leetcode session override cleared")
	return nil
}
