package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/hazyhaar/reelkeeper/reel"
)

type graphQLVariables struct {
	Shortcode           string `json:"shortcode"`
	ChildCommentCount   int    `json:"child_comment_count"`
	FetchCommentCount   int    `json:"fetch_comment_count"`
	ParentCommentCount  int    `json:"parent_comment_count"`
	HasThreadedComments bool   `json:"has_threaded_comments"`
}

type graphQLResponse struct {
	Data struct {
		Media *struct {
			VideoURL string `json:"video_url"`
		} `json:"xdt_shortcode_media"`
	} `json:"data"`
}

// graphQLURL builds the query URL for shortcode.
func (r *Resolver) graphQLURL(shortcode string) (string, error) {
	vars, err := json.Marshal(graphQLVariables{
		Shortcode:           shortcode,
		ChildCommentCount:   3,
		FetchCommentCount:   40,
		ParentCommentCount:  24,
		HasThreadedComments: true,
	})
	if err != nil {
		return "", err
	}
	u, err := url.Parse(r.cfg.GraphQLURL)
	if err != nil {
		return "", fmt.Errorf("graphql url: %w", err)
	}
	q := u.Query()
	q.Set("doc_id", r.cfg.DocID)
	q.Set("variables", string(vars))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// lookupGraphQL is the fallback lookup keyed by shortcode.
func (r *Resolver) lookupGraphQL(ctx context.Context, shortcode string) (string, error) {
	endpoint, err := r.graphQLURL(shortcode)
	if err != nil {
		return "", err
	}
	status, body, err := r.get(ctx, endpoint, map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"Referer":          r.cfg.WebOrigin + "/reel/" + shortcode + "/",
	})
	if err != nil {
		return "", fmt.Errorf("graphql: %w", err)
	}
	if !is2xx(status) {
		return "", &reel.GraphQLRequestError{Status: status}
	}

	var gr graphQLResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("graphql: decode: %w", err)
	}
	if gr.Data.Media == nil {
		return "", reel.ErrNoMediaData
	}
	if gr.Data.Media.VideoURL == "" {
		return "", reel.ErrNoVideoURL
	}
	return gr.Data.Media.VideoURL, nil
}
