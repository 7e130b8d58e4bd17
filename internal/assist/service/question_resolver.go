package service

import (
	"context"
	"strings"

	"lcbridge/internal/assist/repository"
	appErr "lcbridge/pkg/errors"
)

// QuestionResolver is the cache-aside question id lookup.
type QuestionResolver struct {
	repo    *repository.QuestionIDRepository
	fetcher QuestionFetcher
}

func NewQuestionResolver(repo *repository.QuestionIDRepository, fetcher QuestionFetcher) *QuestionResolver {
	return &QuestionResolver{repo: repo, fetcher: fetcher}
}

// Resolve returns the question id for slug, asking the judge only on a miss.
func (r *QuestionResolver) Resolve(ctx context.Context, slug string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "", appErr.New(appErr.InvalidParams).WithMessage("Question slug is required to fetch metadata.")
	}
	fetch := func(ctx context.Context) (string, error) {
		return r.fetcher.FetchQuestionID(ctx, slug)
	}
	if r.repo == nil {
		return fetch(ctx)
	}
	id, err := r.repo.GetOrFetch(ctx, slug, fetch)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", appErr.Newf(appErr.QuestionNotFound, "Question ID not found for slug %q.", slug)
	}
	return id, nil
}
