package judgeclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"lcbridge/internal/assist/model"
	appErr "lcbridge/pkg/errors"
)

const dailyChallengeQuery = `
query questionOfToday {
  activeDailyCodingChallengeQuestion {
    date
    link
    question {
      questionFrontendId
      questionTitle
      questionTitleSlug
      acRate
      difficulty
      topicTags {
        name
        slug
      }
    }
  }
}`

const communitySolutionsQuery = `
query questionSolutions($filters: QuestionSolutionsFilterInput!) {
  questionSolutions(filters: $filters) {
    solutions {
      id
      title
      viewCount
      solutionTags {
        slug
        name
      }
      post {
        id
        content
        voteCount
        voteUpCount
      }
    }
  }
}`

const questionDetailQuery = `
query questionData($titleSlug: String!) {
  question(titleSlug: $titleSlug) {
    questionId
    questionFrontendId
    questionTitle
  }
}`

type graphQLRequest struct {
	Query     string `json:"query"`
	Variables any    `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// graphql posts one query and decodes its data member into out. label names
// the query in error messages.
func (c *Client) graphql(ctx context.Context, label, query string, variables any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	headers, _, err := c.headers(ctx, headerOptions{contentType: true})
	if err != nil {
		return err
	}
	info, err := c.send(ctx, http.MethodPost, "/graphql", headers, graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}
	if !info.OK() {
		return appErr.UpstreamError(info.StatusCode, "%s request failed with status %d", label, info.StatusCode)
	}

	var resp graphQLResponse
	if err := json.Unmarshal(info.Body, &resp); err != nil {
		return appErr.Wrapf(err, appErr.JudgeInvalidResponse, "LeetCode returned a non-JSON response to the %s request.", label)
	}
	if len(resp.Errors) > 0 {
		messages := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msg := e.Message
			if msg == "" {
				msg = "unknown error"
			}
			messages = append(messages, msg)
		}
		return appErr.Newf(appErr.JudgeInvalidResponse, "%s query returned errors: %s", label, strings.Join(messages, ", "))
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return appErr.Wrapf(err, appErr.JudgeInvalidResponse, "Unexpected response structure from LeetCode GraphQL API.")
	}
	return nil
}

// FetchDailyChallenge returns today's problem.
func (c *Client) FetchDailyChallenge(ctx context.Context) (*model.POTD, error) {
	var data struct {
		Challenge *struct {
			Date     string `json:"date"`
			Link     string `json:"link"`
			Question *struct {
				FrontendID any         `json:"questionFrontendId"`
				Title      string      `json:"questionTitle"`
				Slug       string      `json:"questionTitleSlug"`
				ACRate     any         `json:"acRate"`
				Difficulty string      `json:"difficulty"`
				TopicTags  []model.Tag `json:"topicTags"`
			} `json:"question"`
		} `json:"activeDailyCodingChallengeQuestion"`
	}
	if err := c.graphql(ctx, "GraphQL", dailyChallengeQuery, nil, &data); err != nil {
		return nil, err
	}
	if data.Challenge == nil || data.Challenge.Question == nil {
		return nil, appErr.New(appErr.JudgeInvalidResponse).WithMessage("Unexpected response structure from LeetCode GraphQL API.")
	}

	challenge, question := data.Challenge, data.Challenge.Question
	link := challenge.Link
	if link == "" {
		link = "/problems/" + question.Slug + "/"
	}

	acRate, rateOK := toFloat(question.ACRate)
	frontendID := model.Stringify(question.FrontendID)
	if !rateOK || frontendID == nil || question.Title == "" || question.Slug == "" || challenge.Date == "" || !validDifficulty(question.Difficulty) {
		return nil, appErr.New(appErr.JudgeInvalidResponse).WithMessage("Failed to parse POTD payload from LeetCode.")
	}

	tags := question.TopicTags
	if tags == nil {
		tags = []model.Tag{}
	}
	return &model.POTD{
		Date:       challenge.Date,
		Link:       c.absolute(link),
		Title:      question.Title,
		Slug:       question.Slug,
		FrontendID: *frontendID,
		Difficulty: question.Difficulty,
		ACRate:     acRate,
		Tags:       tags,
	}, nil
}

// FetchQuestionID resolves a problem slug to the internal question id used
// by the submit endpoint.
func (c *Client) FetchQuestionID(ctx context.Context, slug string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "", appErr.New(appErr.InvalidParams).WithMessage("Question slug is required to fetch metadata.")
	}

	var data struct {
		Question *struct {
			QuestionID any `json:"questionId"`
		} `json:"question"`
	}
	variables := map[string]any{"titleSlug": slug}
	if err := c.graphql(ctx, "Question metadata", questionDetailQuery, variables, &data); err != nil {
		return "", err
	}
	if data.Question == nil {
		return "", appErr.Newf(appErr.QuestionNotFound, "Question metadata missing for slug %q.", slug)
	}
	if !model.Truthy(data.Question.QuestionID) {
		return "", appErr.Newf(appErr.QuestionNotFound, "Question ID not found for slug %q.", slug)
	}
	return *model.Stringify(data.Question.QuestionID), nil
}

// FetchCandidates lists community solutions for slug. languageTag may be empty.
func (c *Client) FetchCandidates(ctx context.Context, slug, languageTag, orderBy string, pageSize int) ([]model.CandidateDocument, error) {
	filters := map[string]any{
		"questionSlug": slug,
		"skip":         0,
		"first":        pageSize,
		"orderBy":      orderBy,
	}
	if languageTag != "" {
		filters["languageTags"] = []string{languageTag}
	}

	var data struct {
		QuestionSolutions *struct {
			Solutions []struct {
				ID           any         `json:"id"`
				Title        string      `json:"title"`
				SolutionTags []model.Tag `json:"solutionTags"`
				Post         *struct {
					Content   string `json:"content"`
					VoteCount any    `json:"voteCount"`
				} `json:"post"`
			} `json:"solutions"`
		} `json:"questionSolutions"`
	}
	variables := map[string]any{"filters": filters}
	if err := c.graphql(ctx, "Community solutions", communitySolutionsQuery, variables, &data); err != nil {
		return nil, err
	}
	if data.QuestionSolutions == nil {
		return nil, nil
	}

	docs := make([]model.CandidateDocument, 0, len(data.QuestionSolutions.Solutions))
	for _, s := range data.QuestionSolutions.Solutions {
		doc := model.CandidateDocument{Title: s.Title, Tags: s.SolutionTags}
		if id := model.Stringify(s.ID); id != nil {
			doc.ID = *id
		}
		if s.Post != nil {
			doc.Content = s.Post.Content
			doc.Votes = model.IntValue(s.Post.VoteCount)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func validDifficulty(d string) bool {
	switch d {
	case "Easy", "Medium", "Hard":
		return true
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case string:
		f, err := strconv.ParseFloat(value, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
