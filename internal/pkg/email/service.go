// internal/pkg/email/service.go
package email

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
)

var (
	// ErrQueueFull is returned when the dispatch queue cannot take more mail
	ErrQueueFull = errors.New("email queue is full")
	// ErrStopped is returned after the dispatcher has been stopped
	ErrStopped = errors.New("email dispatcher stopped")
)

// Gateway accepts notification requests. Delivery is asynchronous; a nil
// error only means the message was queued.
type Gateway interface {
	Notify(ctx context.Context, recipient string, tpl Template, data interface{}) error
}

// Sender delivers one rendered email
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

type job struct {
	email *Email
	enqAt time.Time
}

// EmailService renders notifications and delivers them from a bounded
// queue drained by a pool of workers, retrying failed sends with
// exponential backoff.
type EmailService struct {
	renderer *Renderer
	sender   Sender
	log      *logrus.Logger
	opts     config.NotificationConfig

	mu      sync.RWMutex
	stopped bool
	queue   chan job

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewEmailService creates the email service for the configured provider
func NewEmailService(cfg *config.Config, log *logrus.Logger) (*EmailService, error) {
	renderer, err := NewRenderer(cfg.Email.FromName, cfg.App.BaseURL)
	if err != nil {
		return nil, err
	}

	var sender Sender
	switch cfg.Email.Provider {
	case "smtp":
		sender = NewSMTPSender(cfg.Email)
	case "resend":
		sender = NewResendSender(cfg.Email)
	case "log":
		sender = NewLogSender(log)
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", cfg.Email.Provider)
	}

	return NewDispatcher(renderer, sender, cfg.Notification, log), nil
}

// NewDispatcher wires a renderer and sender into a dispatcher
func NewDispatcher(renderer *Renderer, sender Sender, opts config.NotificationConfig, log *logrus.Logger) *EmailService {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1000
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 15 * time.Second
	}
	return &EmailService{
		renderer: renderer,
		sender:   sender,
		log:      log,
		opts:     opts,
		queue:    make(chan job, opts.QueueSize),
	}
}

// Start launches the worker pool
func (s *EmailService) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.opts.Workers; i++ {
		s.wg.Add(1)
		go func(worker int) {
			defer s.wg.Done()
			for j := range s.queue {
				s.deliver(runCtx, worker, j)
			}
		}(i)
	}

	s.log.WithField("workers", s.opts.Workers).Info("Email dispatcher started")
}

// Stop refuses new mail and waits for queued mail to drain. When ctx ends
// first, in-flight retries are abandoned.
func (s *EmailService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.queue)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if s.cancel != nil {
			s.cancel()
		}
		return nil
	case <-ctx.Done():
		if s.cancel != nil {
			s.cancel()
		}
		<-done
		return ctx.Err()
	}
}

// Notify renders the template and queues the email
func (s *EmailService) Notify(ctx context.Context, recipient string, tpl Template, data interface{}) error {
	if recipient == "" {
		return fmt.Errorf("email recipient is empty")
	}

	subject, html, err := s.renderer.Render(tpl, data)
	if err != nil {
		return err
	}

	return s.Enqueue(&Email{
		To:          []string{recipient},
		Subject:     subject,
		HTMLContent: html,
		Template:    tpl,
	})
}

// Enqueue queues an already rendered email without blocking
func (s *EmailService) Enqueue(email *Email) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stopped {
		return ErrStopped
	}

	select {
	case s.queue <- job{email: email, enqAt: time.Now()}:
		return nil
	default:
		s.log.WithFields(logrus.Fields{
			"to":       email.To,
			"template": email.Template,
		}).Warn("Email queue full, dropping message")
		return ErrQueueFull
	}
}

// QueueLen returns the current queue length
func (s *EmailService) QueueLen() int {
	return len(s.queue)
}

func (s *EmailService) deliver(ctx context.Context, worker int, j job) {
	entry := s.log.WithFields(logrus.Fields{
		"worker":   worker,
		"to":       j.email.To,
		"template": j.email.Template,
	})

	backoff := s.opts.RetryBackoff
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, s.opts.SendTimeout)
		err := s.sender.Send(sendCtx, j.email)
		cancel()

		if err == nil {
			entry.WithFields(logrus.Fields{
				"attempt": attempt,
				"latency": time.Since(j.enqAt).String(),
			}).Info("Email sent")
			return
		}

		entry.WithError(err).WithField("attempt", attempt).Warn("Email send failed")
		if attempt == s.opts.MaxAttempts {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			entry.Warn("Email dispatcher stopping, abandoning retries")
			return
		case <-timer.C:
		}
		backoff *= 2
	}

	entry.WithField("attempts", s.opts.MaxAttempts).Error("Email delivery failed permanently")
}
