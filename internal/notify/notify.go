// Package notify delivers course-update emails to subscribers, either
// in-process or through a RabbitMQ queue drained by the worker.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

const RoutingCourseUpdated = "course.updated"

type CourseUpdated struct {
	Email      string `json:"email"`
	CourseName string `json:"course_name"`
}

// Message returns the subject and plain-text body sent to the subscriber.
func (e CourseUpdated) Message() (string, string) {
	return "Course updated", fmt.Sprintf("Course materials (%s) have been updated", e.CourseName)
}

type Publisher interface {
	PublishCourseUpdated(ctx context.Context, event CourseUpdated) error
	Close()
}

type Mailer interface {
	Send(to, subject, body string) error
}

// HandleCourseUpdated decodes a delivery and mails it. It returns false when
// the delivery should be requeued.
func HandleCourseUpdated(mailer Mailer, logger *slog.Logger) func([]byte) bool {
	return func(body []byte) bool {
		var ev CourseUpdated
		if err := json.Unmarshal(body, &ev); err != nil {
			logger.Error("dropping malformed course update event", "error", err)
			return true
		}
		if ev.Email == "" {
			logger.Warn("dropping course update event without recipient", "course", ev.CourseName)
			return true
		}

		subject, text := ev.Message()
		if err := mailer.Send(ev.Email, subject, text); err != nil {
			logger.Error("course update email failed", "error", err, "email", ev.Email, "course", ev.CourseName)
			return false
		}
		logger.Info("course update email sent", "email", ev.Email, "course", ev.CourseName)
		return true
	}
}

// AsyncPublisher sends each event on its own goroutine. Used when no broker
// is configured; failures are logged and not retried.
type AsyncPublisher struct {
	mailer Mailer
	logger *slog.Logger
	wg     sync.WaitGroup
}

func NewAsyncPublisher(mailer Mailer, logger *slog.Logger) *AsyncPublisher {
	return &AsyncPublisher{mailer: mailer, logger: logger}
}

func (p *AsyncPublisher) PublishCourseUpdated(_ context.Context, event CourseUpdated) error {
	handle := HandleCourseUpdated(p.mailer, p.logger)
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		handle(body)
	}()
	return nil
}

// Close waits for in-flight sends.
func (p *AsyncPublisher) Close() {
	p.wg.Wait()
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	Logger *slog.Logger
}

func (m LogMailer) Send(to, subject, body string) error {
	m.Logger.Info("email (smtp not configured)", "to", to, "subject", subject, "body", body)
	return nil
}
