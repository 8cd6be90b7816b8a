package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/vbonduro/closet/internal/domain"
)

// ImageSource resolves an item URL (embedded or stored asset) to image bytes.
type ImageSource interface {
	Load(ctx context.Context, url string) (domain.Image, error)
}

// AttachmentPreparer shrinks item photos before they are attached to a request.
type AttachmentPreparer interface {
	PrepareKeyed(ctx context.Context, key string, img domain.Image) (domain.Image, error)
}

type RetryPolicy struct {
	MaxRetries   uint64
	InitialDelay time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy retries a rate-limited call three times, after 2s, 4s and 8s.
var DefaultRetryPolicy = RetryPolicy{MaxRetries: 3, InitialDelay: 2 * time.Second, Multiplier: 2}

// Client wraps a backend with the behaviour every call shares: rate-limit
// retries, client-side request pacing, inventory shuffling and attachment
// preparation. Errors it returns always wrap the operation's sentinel.
type Client struct {
	backend        Gateway
	images         ImageSource
	prep           AttachmentPreparer
	limiter        *rate.Limiter
	retry          RetryPolicy
	shuffle        func([]domain.ClothingItem)
	attachParallel int
	logger         *slog.Logger
}

type ClientOption func(*Client)

func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) { c.retry = p }
}

// WithRequestsPerMinute paces remote attempts; zero or less disables pacing.
func WithRequestsPerMinute(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
		}
	}
}

func WithShuffle(fn func([]domain.ClothingItem)) ClientOption {
	return func(c *Client) { c.shuffle = fn }
}

func WithAttachmentConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.attachParallel = n
		}
	}
}

func NewClient(backend Gateway, images ImageSource, prep AttachmentPreparer, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		backend: backend,
		images:  images,
		prep:    prep,
		limiter: rate.NewLimiter(rate.Inf, 1),
		retry:   DefaultRetryPolicy,
		shuffle: func(items []domain.ClothingItem) {
			rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
		},
		attachParallel: 4,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Classify(ctx context.Context, img domain.Image) (*Classification, error) {
	var out *Classification
	err := c.do(ctx, "classify", func() error {
		var err error
		out, err = c.backend.Classify(ctx, img)
		return err
	})
	if err != nil {
		return nil, wrapOp(ErrClassification, err)
	}
	return out, nil
}

func (c *Client) SelectOutfit(ctx context.Context, req SelectionRequest) (*Selection, error) {
	// Shuffle a copy so the model does not favour whatever was added first.
	req.Inventory = append([]domain.ClothingItem(nil), req.Inventory...)
	c.shuffle(req.Inventory)

	var out *Selection
	err := c.do(ctx, "select_outfit", func() error {
		var err error
		out, err = c.backend.SelectOutfit(ctx, req)
		return err
	})
	if err != nil {
		return nil, wrapOp(ErrSelection, err)
	}
	return out, nil
}

func (c *Client) Illustrate(ctx context.Context, req IllustrationRequest) (*domain.Image, error) {
	req.Attachments = c.attachments(ctx, req.Items)
	c.logger.Debug("illustration attachments prepared", "items", len(req.Items), "attached", len(req.Attachments))

	var out *domain.Image
	err := c.do(ctx, "illustrate", func() error {
		var err error
		out, err = c.backend.Illustrate(ctx, req)
		return err
	})
	if err != nil {
		return nil, wrapOp(ErrIllustration, err)
	}
	if out == nil || len(out.Data) == 0 {
		return nil, fmt.Errorf("%w: no image in response", ErrIllustration)
	}
	return out, nil
}

func (c *Client) RenderGarment(ctx context.Context, category domain.Category, gender domain.Gender) (*domain.Image, error) {
	var out *domain.Image
	err := c.do(ctx, "render_garment", func() error {
		var err error
		out, err = c.backend.RenderGarment(ctx, category, gender)
		return err
	})
	if err != nil {
		return nil, wrapOp(ErrIllustration, err)
	}
	if out == nil || len(out.Data) == 0 {
		return nil, fmt.Errorf("%w: no image in response", ErrIllustration)
	}
	return out, nil
}

// attachments resolves and prepares every item photo concurrently. Items whose
// photo cannot be loaded are left out rather than failing the illustration.
func (c *Client) attachments(ctx context.Context, items []domain.ClothingItem) []domain.Image {
	prepared := make([]*domain.Image, len(items))

	var g errgroup.Group
	g.SetLimit(c.attachParallel)
	for i, item := range items {
		g.Go(func() error {
			img, err := c.images.Load(ctx, item.URL)
			if err != nil {
				c.logger.Debug("dropping attachment", "item_id", item.ID, "error", err)
				return nil
			}
			key := item.ID + ":" + strconv.Itoa(len(item.URL))
			out, err := c.prep.PrepareKeyed(ctx, key, img)
			if err != nil {
				c.logger.Debug("dropping attachment", "item_id", item.ID, "error", err)
				return nil
			}
			prepared[i] = &out
			return nil
		})
	}
	_ = g.Wait()

	result := make([]domain.Image, 0, len(items))
	for _, p := range prepared {
		if p != nil {
			result = append(result, *p)
		}
	}
	return result
}

func (c *Client) do(ctx context.Context, op string, fn func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retry.InitialDelay
	exp.Multiplier = c.retry.Multiplier
	exp.RandomizationFactor = 0
	exp.MaxInterval = time.Hour
	exp.MaxElapsedTime = 0

	var hint time.Duration
	policy := &hintedBackOff{BackOff: backoff.WithMaxRetries(exp, c.retry.MaxRetries), hint: &hint}

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		err := fn()
		if err == nil {
			return nil
		}
		var rl *RateLimitError
		if errors.As(err, &rl) {
			hint = rl.RetryAfter
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(policy, ctx), func(err error, delay time.Duration) {
		c.logger.Warn("gateway rate limited, retrying", "op", op, "attempt", attempt, "delay", delay, "error", err)
	})
}

// hintedBackOff waits at least as long as the provider's last retry-after hint.
type hintedBackOff struct {
	backoff.BackOff
	hint *time.Duration
}

func (h *hintedBackOff) NextBackOff() time.Duration {
	d := h.BackOff.NextBackOff()
	if d == backoff.Stop {
		return d
	}
	if *h.hint > d {
		return *h.hint
	}
	return d
}

func wrapOp(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

var _ Gateway = (*Client)(nil)
