package notion

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// probeBodyPreview caps how much of a failed probe's response body is
// reported back.
const probeBodyPreview = 200

// AddComment posts a plain-text comment on a page. Failures are returned
// without retry.
func (s *Service) AddComment(ctx context.Context, pageID, text string) error {
	req := CommentRequest{
		Parent: CommentParent{PageID: pageID},
		RichText: []TextInput{
			{Type: "text", Text: TextContent{Content: text}},
		},
	}

	var ack Comment
	if err := s.client.Post(ctx, "/comments", req, &ack); err != nil {
		s.logger.Error("failed to add comment", "page_id", pageID, "error", err)
		return fmt.Errorf("adding comment to page %s: %w", pageID, err)
	}

	s.logger.Info("added comment", "page_id", pageID, "comment_id", ack.ID)
	return nil
}

// WhoAmI returns the user or bot the token belongs to.
func (s *Service) WhoAmI(ctx context.Context) (User, error) {
	var u User
	if err := s.client.Get(ctx, "/users/me", &u); err != nil {
		return User{}, fmt.Errorf("fetching current user: %w", err)
	}
	return u, nil
}

// TestConnection probes the identity endpoint. It never returns an error:
// a failed probe yields false and a message. For HTTP failures the message
// is the status code followed by the start of the response body.
func (s *Service) TestConnection(ctx context.Context) (bool, string) {
	_, err := s.WhoAmI(ctx)
	if err == nil {
		return true, ""
	}

	msg := err.Error()
	if apiErr, ok := AsAPIError(err); ok {
		detail := apiErr.Body
		if detail == "" {
			detail = apiErr.Error()
		}
		detail = clip(detail, probeBodyPreview)
		msg = fmt.Sprintf("%d: %s", apiErr.StatusCode, detail)
	}

	s.logger.Error("connection test failed", "error", msg)
	return false, msg
}

// clip cuts s to at most n bytes without splitting a UTF-8 sequence.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
