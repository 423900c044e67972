package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/moredip/session-share/pkg/models"
)

// ghAuthHint is the remediation gh prints when it has no credentials.
const ghAuthHint = "gh auth login"

// ghGistClient implements GistClient by driving the gh CLI, which keeps
// its own credentials.
type ghGistClient struct {
	exec CLIExecutor
	gh   string
	http *http.Client
}

// NewGHGistClient creates a GistClient backed by the gh command. httpClient
// is used only to download truncated files and defaults to
// http.DefaultClient.
func NewGHGistClient(exec CLIExecutor, ghCommand string, httpClient *http.Client) GistClient {
	if ghCommand == "" {
		ghCommand = "gh"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ghGistClient{exec: exec, gh: ghCommand, http: httpClient}
}

func (c *ghGistClient) run(ctx context.Context, op string, args ...string) (string, error) {
	cfg := CLIExecConfig{
		CLI:  c.gh,
		Args: args,
		// Publish must never block on an interactive prompt.
		Env: []string{"GH_PROMPT_DISABLED=1"},
	}
	result, err := c.exec.Exec(ctx, cfg)
	if err != nil {
		return "", &models.RemoteError{Op: op, Err: err}
	}
	if result.ExitCode != 0 {
		stderr := strings.TrimSpace(result.Stderr)
		switch {
		case strings.Contains(stderr, ghAuthHint):
			return "", &models.RemoteError{Op: op, Err: models.ErrNotAuthenticated}
		case strings.Contains(stderr, "HTTP 404"):
			return "", &models.RemoteError{Op: op, Err: fmt.Errorf("%w: %s", models.ErrNotFound, stderr)}
		}
		return "", &models.RemoteError{Op: op, Err: fmt.Errorf("%s exited %d: %s", cfg.CommandLine(), result.ExitCode, stderr)}
	}
	return result.Stdout, nil
}

func (c *ghGistClient) Create(ctx context.Context, files []string, description string) (string, error) {
	if err := checkUniqueNames(files); err != nil {
		return "", err
	}
	args := append([]string{"gist", "create"}, files...)
	if description != "" {
		args = append(args, "--desc", description)
	}
	out, err := c.run(ctx, models.OpCreate, args...)
	if err != nil {
		return "", err
	}
	// gh prints progress to stderr and the gist URL as the last stdout line.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	url := strings.TrimSpace(lines[len(lines)-1])
	if url == "" {
		return "", &models.RemoteError{Op: models.OpCreate, Err: errors.New("gh gist create printed no URL")}
	}
	return url, nil
}

// UpdateDescription goes through the REST endpoint because `gh gist edit`
// prompts for a file when the gist has more than one.
func (c *ghGistClient) UpdateDescription(ctx context.Context, id, description string) error {
	_, err := c.run(ctx, models.OpUpdate, "api", "--method", "PATCH", "/gists/"+id, "-f", "description="+description)
	return err
}

// List reads `gh api --paginate`, which prints one JSON array per page
// back to back.
func (c *ghGistClient) List(ctx context.Context) ([]Gist, error) {
	out, err := c.run(ctx, models.OpList, "api", "/gists?per_page=100", "--paginate")
	if err != nil {
		return nil, err
	}
	gists, err := decodePages(strings.NewReader(out))
	if err != nil {
		return nil, &models.RemoteError{Op: models.OpList, Err: err}
	}
	return gists, nil
}

func decodePages(r io.Reader) ([]Gist, error) {
	dec := json.NewDecoder(r)
	var all []Gist
	for {
		var page []Gist
		err := dec.Decode(&page)
		if errors.Is(err, io.EOF) {
			return all, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decoding gist listing: %w", err)
		}
		all = append(all, page...)
	}
}

func (c *ghGistClient) Get(ctx context.Context, id string) (*Gist, error) {
	out, err := c.run(ctx, models.OpGet, "api", "/gists/"+id)
	if err != nil {
		return nil, err
	}
	var g Gist
	if err := json.Unmarshal([]byte(out), &g); err != nil {
		return nil, &models.RemoteError{Op: models.OpGet, Err: fmt.Errorf("decoding gist %s: %w", id, err)}
	}
	if err := fillTruncated(ctx, c.http, &g); err != nil {
		return nil, &models.RemoteError{Op: models.OpDownload, Err: err}
	}
	return &g, nil
}
