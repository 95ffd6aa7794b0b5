// Package chat holds the transcript of a chat widget and the controller that
// turns one line of user input into one request and one bot reply.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/geminichat/internal/api"
	apierrors "github.com/diogo/geminichat/internal/errors"
	"github.com/diogo/geminichat/internal/logging"
	"github.com/diogo/geminichat/internal/models"
)

var (
	ErrEmptyInput      = errors.New("input is empty")
	ErrBusy            = errors.New("a request is already in flight")
	ErrClosed          = errors.New("controller is closed")
	ErrEmptyTranscript = errors.New("transcript is empty")
)

// StateObserver is called after every state change
type StateObserver func(State)

// Controller runs the turns of a single chat widget. At most one request is
// in flight at a time.
type Controller struct {
	gen         api.Generator
	transcript  *Transcript
	logger      *slog.Logger
	failureText string
	observers   []StateObserver

	mu     sync.Mutex
	state  State
	closed bool

	// ctx is cancelled by Close and bounds every outstanding call
	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Controller
type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFailureText replaces the text shown when a turn fails
func WithFailureText(text string) Option {
	return func(c *Controller) {
		if text != "" {
			c.failureText = text
		}
	}
}

// WithTranscript makes the controller write into an existing transcript
func WithTranscript(t *Transcript) Option {
	return func(c *Controller) {
		if t != nil {
			c.transcript = t
		}
	}
}

func WithStateObserver(fn StateObserver) Option {
	return func(c *Controller) {
		if fn != nil {
			c.observers = append(c.observers, fn)
		}
	}
}

// NewController creates a controller sending prompts to gen
func NewController(gen api.Generator, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		gen:         gen,
		transcript:  NewTranscript(),
		logger:      logging.Discard(),
		failureText: models.DefaultFailureText,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Transcript() *Transcript {
	return c.transcript
}

func (c *Controller) FailureText() string {
	return c.failureText
}

// State returns the current request state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a request is in flight
func (c *Controller) Busy() bool {
	return c.State() == Sending
}

// Closed reports whether Close was called
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close cancels any outstanding call. Exchanges still running finish as
// Discarded and leave the transcript untouched. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	already := c.closed
	c.closed = true
	c.mu.Unlock()

	if !already {
		c.cancel()
		c.logger.Debug("controller closed")
	}
}

// Submit runs a whole turn: Begin followed by Run
func (c *Controller) Submit(ctx context.Context, raw string) (Result, error) {
	ex, err := c.Begin(raw)
	if err != nil {
		return Result{}, err
	}
	return ex.Run(ctx), nil
}

// Begin validates raw and, when accepted, appends the user turn and the
// pending placeholder and moves the controller to Sending. Input that is
// empty after trimming returns ErrEmptyInput and changes nothing.
// The caller clears its input field only when Begin succeeds.
func (c *Controller) Begin(raw string) (*Exchange, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.state == Sending {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.state = Sending
	c.mu.Unlock()

	c.transcript.Append(models.UserTurn(raw))
	c.notifyState(Sending)
	c.transcript.Append(models.PendingTurn())

	ex := &Exchange{
		ID:    uuid.NewString(),
		Input: raw,
		c:     c,
	}
	c.logger.Debug("exchange started", slog.String("exchange_id", ex.ID), slog.Int("input_len", len(raw)))
	return ex, nil
}

// Exchange is one accepted turn waiting for its response
type Exchange struct {
	ID    string
	Input string

	c      *Controller
	once   sync.Once
	result Result
}

// Run performs the request and settles the placeholder. It always returns
// the controller to Idle. Run is single-use: later calls return the first result.
func (e *Exchange) Run(ctx context.Context) Result {
	e.once.Do(func() {
		e.result = e.c.resolve(ctx, e)
	})
	return e.result
}

func (c *Controller) resolve(ctx context.Context, ex *Exchange) Result {
	defer c.finish()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	start := time.Now()
	text, err := c.generate(ctx, ex.Input)
	res := Result{ExchangeID: ex.ID, Duration: time.Since(start)}

	if c.Closed() {
		res.Outcome = Discarded
		res.Err = err
		res.Kind = apierrors.Classify(err)
		c.logger.Debug("exchange discarded", slog.String("exchange_id", ex.ID))
		return res
	}

	if err != nil {
		res.Outcome = Failed
		res.Text = c.failureText
		res.Err = err
		res.Kind = apierrors.Classify(err)
		c.logger.Warn("exchange failed",
			slog.String("exchange_id", ex.ID),
			slog.String("kind", string(res.Kind)),
			slog.Int("http_status", apierrors.GetHTTPStatus(err)),
			slog.String("error", err.Error()),
		)
	} else {
		res.Outcome = Resolved
		res.Text = text
		c.logger.Debug("exchange resolved",
			slog.String("exchange_id", ex.ID),
			slog.Duration("duration", res.Duration),
			slog.Int("output_len", len(text)),
		)
	}

	if err := c.transcript.ReplaceLast(models.BotTurn(res.Text)); err != nil {
		c.logger.Error("failed to settle placeholder", slog.String("exchange_id", ex.ID), slog.String("error", err.Error()))
	}
	return res
}

// generate calls the generator, turning a panic or an empty answer into an error
func (c *Controller) generate(ctx context.Context, input string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("generator panicked: %v", r)
		}
	}()

	text, err = c.gen.Generate(ctx, input)
	if err == nil && text == "" {
		err = apierrors.NewParseError("empty response text", "")
	}
	return text, err
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.state = Idle
	c.mu.Unlock()
	c.notifyState(Idle)
}

func (c *Controller) notifyState(s State) {
	for _, fn := range c.observers {
		fn(s)
	}
}
