package service

import (
	"context"
	"strconv"
	"strings"

	"lcbridge/internal/assist/model"
	"lcbridge/internal/language"
	"lcbridge/internal/snippet"
	appErr "lcbridge/pkg/errors"
	"lcbridge/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	candidatePageSize = 10
	orderMostVotes    = "most_votes"
	defaultSolution   = "Community Solution"
)

// ReferenceService assembles the editorial and community links for a problem
// plus the best matching community code sample.
type ReferenceService struct {
	fetcher   ContentFetcher
	extractor *snippet.Extractor
	baseURL   string
}

// NewReferenceService creates a reference service. extractor may be nil to
// use the default detectors.
func NewReferenceService(fetcher ContentFetcher, extractor *snippet.Extractor, baseURL string) *ReferenceService {
	if extractor == nil {
		extractor = snippet.NewExtractor(nil)
	}
	return &ReferenceService{
		fetcher:   fetcher,
		extractor: extractor,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Build returns the reference outcome for slug. Community lookup failures
// are logged and leave CommunitySolution nil.
func (s *ReferenceService) Build(ctx context.Context, slug, lang string) (*model.ReferencesResponse, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, appErr.ValidationError("slug", "required").WithMessage("slug is required")
	}
	res := language.ResolveDisplay(lang)
	display := model.StringPtr(res.Display)

	communityURL := s.baseURL + "/problems/" + slug + "/solutions/?orderBy=" + orderMostVotes
	if res.Slug != "" {
		communityURL += "&languageTags=" + res.Slug
	}

	resp := &model.ReferencesResponse{
		Slug:     slug,
		Language: display,
		Items: []model.ReferenceItem{
			{
				Title:  "LeetCode Official Editorial",
				URL:    s.baseURL + "/problems/" + slug + "/editorial/",
				Source: "editorial",
			},
			{
				Title:    "Most Voted Community Discussions",
				URL:      communityURL,
				Language: display,
				Source:   "solutions_index",
			},
		},
	}

	solution, err := s.topSolution(ctx, slug, res, display)
	if err != nil {
		logger.Warn(ctx, "community solution lookup failed",
			zap.String("slug", slug),
			zap.String("language_tag", res.Slug),
			zap.Error(err),
		)
	}
	resp.CommunitySolution = solution
	return resp, nil
}

func (s *ReferenceService) topSolution(ctx context.Context, slug string, res language.Resolution, preferred *string) (*model.CommunitySolution, error) {
	if s.fetcher == nil {
		return nil, nil
	}
	docs, err := s.fetcher.FetchCandidates(ctx, slug, res.Slug, orderMostVotes, candidatePageSize)
	if err != nil {
		return nil, err
	}
	doc, code, ok := s.selectCandidate(docs, res.Aliases)
	if !ok {
		return nil, nil
	}

	id, err := strconv.ParseInt(strings.TrimSpace(doc.ID), 10, 64)
	if err != nil {
		return nil, appErr.New(appErr.SolutionInvalid)
	}
	title := doc.Title
	if title == "" {
		title = defaultSolution
	}
	return &model.CommunitySolution{
		ID:       id,
		Title:    title,
		URL:      s.baseURL + "/problems/" + slug + "/solutions/" + strconv.FormatInt(id, 10) + "/",
		Votes:    doc.Votes,
		Language: solutionLanguage(doc.Tags, res.Aliases, preferred),
		Code:     model.StringPtr(code),
		Content:  model.StringPtr(doc.Content),
	}, nil
}

// selectCandidate picks the first document yielding a snippet, else the first one.
func (s *ReferenceService) selectCandidate(docs []model.CandidateDocument, aliases []string) (model.CandidateDocument, string, bool) {
	if len(docs) == 0 {
		return model.CandidateDocument{}, "", false
	}
	for _, doc := range docs {
		if code := s.extractor.Code(doc.Content, aliases); code != "" {
			return doc, code, true
		}
	}
	return docs[0], "", true
}

// solutionLanguage names the first tag overlapping an alias, else preferred.
func solutionLanguage(tags []model.Tag, aliases []string, preferred *string) *string {
	for _, tag := range tags {
		tagSlug := language.Normalize(tag.Slug)
		if tagSlug == "" {
			continue
		}
		for _, alias := range aliases {
			if strings.Contains(alias, tagSlug) || strings.Contains(tagSlug, alias) {
				if tag.Name != "" {
					return &tag.Name
				}
				return &tag.Slug
			}
		}
	}
	return preferred
}
