// Package explorer drives the explore -> fetch file -> convert workflow
// against the repo-convert backend and projects it into a View.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"

	"github.com/ziadkadry99/repo-convert/internal/api"
)

var (
	// ErrNoRepository is returned when a file is requested before any
	// repository was explored.
	ErrNoRepository = errors.New("no repository explored")
	// ErrNoFile is returned when conversion is requested before a file
	// was fetched.
	ErrNoFile = errors.New("no file selected")
	// ErrNoTargetLanguage is returned when conversion has no target.
	ErrNoTargetLanguage = errors.New("no target language selected")
	// ErrSuperseded is returned by an operation whose response arrived
	// after a newer operation replaced it. Its result was discarded.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// Backend is the part of the API client the explorer needs.
type Backend interface {
	Explore(ctx context.Context, repoURL string) (*api.ExploreResponse, error)
	FetchFile(ctx context.Context, repoURL, filePath string) (*api.FetchFileResponse, error)
	ConvertFile(ctx context.Context, req api.ConvertFileRequest) (*api.ConvertResponse, error)
}

// Indicator is a loading overlay. Show may be called again while shown to
// replace the message.
type Indicator interface {
	Show(message string)
	Hide()
}

// Session is the repository context of an explorer.
type Session struct {
	RepoURL  string
	FilePath string
	Language string
}

type opKind int

const (
	opExplore opKind = iota
	opFetch
	opConvert
	numOps
)

// supersedes lists the operations whose in-flight requests an operation
// of the given kind invalidates, both when it starts and when its
// response is applied.
var supersedes = [numOps][]opKind{
	opExplore: {opExplore, opFetch, opConvert},
	opFetch:   {opFetch, opConvert},
	opConvert: {opConvert},
}

type inflight struct {
	token  uint64
	cancel context.CancelFunc
}

// Controller owns one explorer session. It is safe for concurrent use;
// only the most recently issued request of each kind may update state.
type Controller struct {
	backend   Backend
	indicator Indicator
	log       *logger.Entry

	mu      sync.Mutex
	session Session
	view    View
	loading int
	ops     [numOps]inflight
}

// New creates a controller. indicator may be nil.
func New(backend Backend, indicator Indicator) *Controller {
	return &Controller{
		backend:   backend,
		indicator: indicator,
		log:       logger.WithField("component", "explorer"),
	}
}

// View returns a snapshot of the current projection.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.clone()
}

// Session returns the current repository context.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Explore loads the file list of rawURL. The URL is not validated here;
// the backend decides what it accepts.
func (c *Controller) Explore(ctx context.Context, rawURL string) error {
	repoURL := strings.TrimSpace(rawURL)

	ctx, token, done := c.begin(ctx, opExplore, MsgExploring, PhaseExploring, func(v *View) {
		v.Source = ""
		v.Converted = ""
	})
	defer done()

	resp, err := c.backend.Explore(ctx, repoURL)
	return c.finish(opExplore, token, err, func() {
		canonical := resp.RepoURL
		if canonical == "" {
			canonical = repoURL
		}
		// A new repository invalidates the previous file context.
		c.session = Session{RepoURL: canonical}
		c.view.RepoURL = canonical
		c.view.Files = sortedEntries(resp.Files)
		c.view.Placeholder = ""
		if len(c.view.Files) == 0 {
			c.view.Placeholder = NoFilesPlaceholder
		}
		c.view.SourceLabel = ""
		c.view.TargetLabel = ""
		c.view.ConvertVisible = false
		c.view.Phase = PhaseFileListShown
		c.log.WithFields(logger.Fields{"repo": canonical, "files": len(c.view.Files)}).Debug("explored repository")
	})
}

// FetchFile loads filePath from the explored repository.
func (c *Controller) FetchFile(ctx context.Context, filePath string) error {
	c.mu.Lock()
	repoURL := c.session.RepoURL
	c.mu.Unlock()
	if repoURL == "" {
		return c.reject(ErrNoRepository)
	}

	ctx, token, done := c.begin(ctx, opFetch, MsgFetching, PhaseFetchingFile, func(v *View) {
		v.Source = ""
		v.Converted = ""
		v.TargetLabel = ""
	})
	defer done()

	resp, err := c.backend.FetchFile(ctx, repoURL, filePath)
	return c.finish(opFetch, token, err, func() {
		c.session.FilePath = filePath
		c.session.Language = resp.Language
		c.view.Source = resp.Content
		c.view.SourceLabel = LanguageLabel(resp.Language)
		c.view.Converted = ""
		c.view.TargetLabel = ""
		for i := range c.view.Files {
			c.view.Files[i].Selected = c.view.Files[i].Path == filePath
		}
		c.view.ConvertVisible = true
		c.view.Phase = PhaseFileShown
	})
}

// Convert translates the fetched file into targetLanguage.
func (c *Controller) Convert(ctx context.Context, targetLanguage string) error {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	if sess.FilePath == "" {
		return c.reject(ErrNoFile)
	}
	if targetLanguage == "" {
		return c.reject(ErrNoTargetLanguage)
	}

	ctx, token, done := c.begin(ctx, opConvert, MsgConverting, PhaseConverting, func(v *View) {
		v.Converted = ""
	})
	defer done()

	resp, err := c.backend.ConvertFile(ctx, api.ConvertFileRequest{
		RepoURL:        sess.RepoURL,
		FilePath:       sess.FilePath,
		SourceLanguage: sess.Language,
		TargetLanguage: targetLanguage,
	})
	return c.finish(opConvert, token, err, func() {
		c.view.Converted = resp.ConvertedCode
		c.view.TargetLabel = LanguageLabel(targetLanguage)
		c.view.Phase = PhaseConverted
	})
}

// begin registers a new operation of kind, cancelling and invalidating
// the requests it supersedes, and shows the loading indicator. The
// returned func must be deferred; it hides the indicator once no
// operation is left in flight.
func (c *Controller) begin(ctx context.Context, kind opKind, message string, phase Phase, prepare func(*View)) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	for _, k := range supersedes[kind] {
		c.invalidate(k)
	}
	c.ops[kind].cancel = cancel
	token := c.ops[kind].token

	c.loading++
	c.view.Loading = true
	c.view.LoadingMessage = message
	c.view.Error = ""
	c.view.Phase = phase
	prepare(&c.view)
	c.mu.Unlock()

	if c.indicator != nil {
		c.indicator.Show(message)
	}

	return ctx, token, func() {
		cancel()
		c.mu.Lock()
		if c.ops[kind].token == token {
			c.ops[kind].cancel = nil
		}
		c.loading--
		idle := c.loading == 0
		if idle {
			c.view.Loading = false
			c.view.LoadingMessage = ""
		}
		c.mu.Unlock()

		if idle && c.indicator != nil {
			c.indicator.Hide()
		}
	}
}

// finish applies a response if its request is still the latest of its
// kind. apply runs with c.mu held.
func (c *Controller) finish(kind opKind, token uint64, err error, apply func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ops[kind].token != token {
		c.log.WithField("token", token).Debug("discarding stale response")
		return ErrSuperseded
	}
	if err != nil {
		c.view.Error = err.Error()
		c.view.Phase = phaseAfterFailure(kind, c.view)
		c.log.WithError(err).Warn("explorer request failed")
		return err
	}
	apply()
	// The applied response changed the context that dependent requests
	// were issued against, even those issued after this one.
	for _, k := range supersedes[kind] {
		if k != kind {
			c.invalidate(k)
		}
	}
	return nil
}

// invalidate cancels the in-flight request of kind and makes its response
// stale. c.mu must be held.
func (c *Controller) invalidate(kind opKind) {
	if c.ops[kind].cancel != nil {
		c.ops[kind].cancel()
		c.ops[kind].cancel = nil
	}
	c.ops[kind].token++
}

// reject records an error for an operation that never reached the network.
func (c *Controller) reject(err error) error {
	c.mu.Lock()
	c.view.Error = err.Error()
	c.mu.Unlock()
	return fmt.Errorf("explorer: %w", err)
}

func phaseAfterFailure(kind opKind, v View) Phase {
	switch kind {
	case opConvert:
		return PhaseFileShown
	case opFetch:
		return PhaseFileListShown
	default:
		if v.RepoURL != "" {
			return PhaseFileListShown
		}
		return PhaseIdle
	}
}

func sortedEntries(files []api.TreeFile) []FileEntry {
	if len(files) == 0 {
		return nil
	}
	entries := make([]FileEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, FileEntry{Path: f.Path})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}
