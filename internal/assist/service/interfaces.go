// Package service holds the lcbridge workflows: submission orchestration,
// reference assembly and the thin judge lookups behind the HTTP API.
package service

import (
	"context"

	"lcbridge/internal/assist/model"
)

// CredentialSource yields the active judge session.
type CredentialSource interface {
	Active(ctx context.Context) (model.Credential, error)
}

// QuestionLookup resolves a problem slug to the judge's question id.
type QuestionLookup interface {
	Resolve(ctx context.Context, slug string) (string, error)
}

// QuestionFetcher is the uncached upstream question id query.
type QuestionFetcher interface {
	FetchQuestionID(ctx context.Context, slug string) (string, error)
}

// JudgeClient submits code and reports verdicts.
type JudgeClient interface {
	Submit(ctx context.Context, slug, questionID, lang, code string) (model.SubmissionID, error)
	CheckStatus(ctx context.Context, slug string, id model.SubmissionID) (map[string]any, error)
}

// ContentFetcher lists community solution posts for a problem.
type ContentFetcher interface {
	FetchCandidates(ctx context.Context, slug, languageTag, orderBy string, pageSize int) ([]model.CandidateDocument, error)
}

// ProblemFetcher serves the one-shot judge lookups.
type ProblemFetcher interface {
	FetchDailyChallenge(ctx context.Context) (*model.POTD, error)
	FetchSubmissions(ctx context.Context, slug string, limit int) (*model.SubmissionHistory, error)
}
