package ocr

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/semaphore"
)

// Engine turns image bytes into recognized text
type Engine interface {
	// Name returns the engine identifier used in logs and health output
	Name() string

	// Recognize runs OCR over the image in the given language
	Recognize(ctx context.Context, image []byte, language string) (string, error)

	// Version reports the underlying engine version, or an error when the
	// engine cannot be used on this host or does not answer before ctx ends
	Version(ctx context.Context) (string, error)
}

// ErrTimeout is returned when recognition does not finish before the deadline
var ErrTimeout = errors.New("ocr timed out")

// Options configures a Service
type Options struct {
	Language      string
	Timeout       time.Duration
	MaxConcurrent int
	Preprocessor  *Preprocessor // nil disables preprocessing
}

// Service wraps an Engine with a per-call deadline and a bound on how many
// recognitions run at once
type Service struct {
	engine       Engine
	language     string
	timeout      time.Duration
	slots        *semaphore.Weighted
	preprocessor *Preprocessor
}

// Result is the outcome of a successful recognition
type Result struct {
	Text     string
	Duration time.Duration
}

// NewService creates a new OCR service around engine
func NewService(engine Engine, opts Options) *Service {
	if opts.Language == "" {
		opts.Language = "eng"
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = runtime.NumCPU()
	}
	return &Service{
		engine:       engine,
		language:     opts.Language,
		timeout:      opts.Timeout,
		slots:        semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		preprocessor: opts.Preprocessor,
	}
}

// EngineName returns the name of the wrapped engine
func (s *Service) EngineName() string {
	return s.engine.Name()
}

// EngineVersion returns the wrapped engine's version
func (s *Service) EngineVersion(ctx context.Context) (string, error) {
	return s.engine.Version(ctx)
}

// Recognize runs the engine over image. The deadline covers both waiting for
// a free slot and the recognition itself. Engines that ignore ctx are left
// running in the background once the deadline passes; their result is
// discarded.
func (s *Service) Recognize(ctx context.Context, image []byte) (*Result, error) {
	if len(image) == 0 {
		return nil, ErrEmptyImage
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, wrapContextErr(err)
	}

	if s.preprocessor != nil {
		image = s.preprocessor.Process(image)
	}

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		defer s.slots.Release(1)
		text, err := s.engine.Recognize(ctx, image, s.language)
		done <- outcome{text, err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, fmt.Errorf("%s: %w", s.engine.Name(), wrapContextErr(out.err))
		}
		return &Result{Text: out.text, Duration: time.Since(start)}, nil
	case <-ctx.Done():
		return nil, wrapContextErr(ctx.Err())
	}
}

func wrapContextErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
