package service

import (
	"context"
	"strings"

	"lcbridge/internal/assist/model"
	appErr "lcbridge/pkg/errors"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 50
)

// ProblemService serves the daily challenge and submission history lookups.
type ProblemService struct {
	fetcher ProblemFetcher
}

func NewProblemService(fetcher ProblemFetcher) *ProblemService {
	return &ProblemService{fetcher: fetcher}
}

// DailyChallenge returns today's problem.
func (s *ProblemService) DailyChallenge(ctx context.Context) (*model.POTD, error) {
	return s.fetcher.FetchDailyChallenge(ctx)
}

// Submissions lists recent submissions. A zero limit selects the default.
func (s *ProblemService) Submissions(ctx context.Context, slug string, limit int) (*model.SubmissionHistory, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, appErr.ValidationError("slug", "required").WithMessage("slug is required")
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, appErr.ValidationError("limit", "must be between 1 and 50").WithMessage("limit must be between 1 and 50")
	}
	return s.fetcher.FetchSubmissions(ctx, slug, limit)
}
