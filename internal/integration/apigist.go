package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/moredip/session-share/pkg/models"
)

const githubAPIVersion = "2022-11-28"

// APIError is a non-2xx response from the gists REST API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// apiGistClient implements GistClient against the REST API with a token.
type apiGistClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewAPIGistClient creates a GistClient for the REST API at baseURL. token
// may be empty, in which case every call fails as not authenticated.
func NewAPIGistClient(baseURL, token string, httpClient *http.Client) GistClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &apiGistClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

func (c *apiGistClient) newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends a request to url (absolute) and decodes a 2xx JSON response into
// out when out is non-nil. It returns the response headers.
func (c *apiGistClient) do(ctx context.Context, op, method, url string, body, out any) (http.Header, error) {
	if c.token == "" {
		return nil, &models.RemoteError{Op: op, Err: models.ErrNotAuthenticated}
	}
	req, err := c.newRequest(ctx, method, url, body)
	if err != nil {
		return nil, &models.RemoteError{Op: op, Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &models.RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.RemoteError{Op: op, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.RemoteError{Op: op, Err: parseAPIError(resp.StatusCode, data)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, &models.RemoteError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
		}
	}
	return resp.Header, nil
}

func parseAPIError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)
	apiErr := &APIError{StatusCode: status, Message: payload.Message}
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w (%v)", models.ErrNotAuthenticated, apiErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w (%v)", models.ErrNotFound, apiErr)
	}
	return apiErr
}

type createFile struct {
	Content string `json:"content"`
}

type createRequest struct {
	Description string                `json:"description"`
	Public      bool                  `json:"public"`
	Files       map[string]createFile `json:"files"`
}

func (c *apiGistClient) Create(ctx context.Context, files []string, description string) (string, error) {
	if c.token == "" {
		return "", &models.RemoteError{Op: models.OpCreate, Err: models.ErrNotAuthenticated}
	}
	if err := checkUniqueNames(files); err != nil {
		return "", err
	}
	req := createRequest{Description: description, Files: make(map[string]createFile, len(files))}
	for _, path := range files {
		name := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		req.Files[name] = createFile{Content: string(data)}
	}

	var created Gist
	if _, err := c.do(ctx, models.OpCreate, http.MethodPost, c.baseURL+"/gists", req, &created); err != nil {
		return "", err
	}
	if created.HTMLURL == "" {
		return "", &models.RemoteError{Op: models.OpCreate, Err: errors.New("response carried no html_url")}
	}
	return created.HTMLURL, nil
}

func (c *apiGistClient) UpdateDescription(ctx context.Context, id, description string) error {
	body := map[string]string{"description": description}
	_, err := c.do(ctx, models.OpUpdate, http.MethodPatch, c.baseURL+"/gists/"+id, body, nil)
	return err
}

// List follows the Link rel="next" header until the last page.
func (c *apiGistClient) List(ctx context.Context) ([]Gist, error) {
	var all []Gist
	next := c.baseURL + "/gists?per_page=100"
	for next != "" {
		var page []Gist
		header, err := c.do(ctx, models.OpList, http.MethodGet, next, nil, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		next = parseLinkNext(header.Get("Link"))
	}
	return all, nil
}

func (c *apiGistClient) Get(ctx context.Context, id string) (*Gist, error) {
	var g Gist
	if _, err := c.do(ctx, models.OpGet, http.MethodGet, c.baseURL+"/gists/"+id, nil, &g); err != nil {
		return nil, err
	}
	if err := fillTruncated(ctx, c.http, &g); err != nil {
		return nil, &models.RemoteError{Op: models.OpDownload, Err: err}
	}
	return &g, nil
}

// parseLinkNext extracts the URL with rel="next" from an RFC 5988 Link
// header. Returns empty string if no next link is present.
func parseLinkNext(header string) string {
	for _, part := range strings.Split(header, ",") {
		segments := strings.SplitN(strings.TrimSpace(part), ";", 2)
		if len(segments) != 2 {
			continue
		}
		urlPart := strings.TrimSpace(segments[0])
		if !strings.Contains(segments[1], `rel="next"`) {
			continue
		}
		if strings.HasPrefix(urlPart, "<") && strings.HasSuffix(urlPart, ">") {
			return urlPart[1 : len(urlPart)-1]
		}
	}
	return ""
}
