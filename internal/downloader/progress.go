package downloader

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ProgressEvent is one normalized snapshot of a transfer.
type ProgressEvent struct {
	BytesTotal      int64
	BytesDownloaded int64
	Percent         float64
}

// Done reports whether the transfer is complete.
func (e ProgressEvent) Done() bool {
	return e.Percent >= 100
}

// NewProgressEvent builds an event from the stream size and the bytes still
// to come. An unknown size counts as complete.
func NewProgressEvent(log logrus.FieldLogger, total, remaining int64) ProgressEvent {
	if total <= 0 {
		if log != nil {
			log.WithField("remaining", remaining).Warn("taille du flux inconnue, progression considérée comme terminée")
		}
		return ProgressEvent{Percent: 100}
	}
	if remaining < 0 {
		remaining = 0
	}
	if remaining > total {
		remaining = total
	}
	done := total - remaining
	return ProgressEvent{
		BytesTotal:      total,
		BytesDownloaded: done,
		Percent:         float64(done) / float64(total) * 100,
	}
}

// ProgressHandler consumes progress events.
type ProgressHandler interface {
	OnProgress(ProgressEvent)
}

// ProgressFunc adapts a function to ProgressHandler.
type ProgressFunc func(ProgressEvent)

func (f ProgressFunc) OnProgress(e ProgressEvent) { f(e) }

// Callback turns h into the raw callback registered on a Video.
func Callback(h ProgressHandler, log logrus.FieldLogger) RawProgressFunc {
	if h == nil {
		return nil
	}
	return func(total, remaining int64) {
		h.OnProgress(NewProgressEvent(log, total, remaining))
	}
}

// progressWriter counts bytes written and reports the remaining amount.
type progressWriter struct {
	size    int64
	written atomic.Int64
	report  RawProgressFunc
}

func newProgressWriter(size int64, report RawProgressFunc) *progressWriter {
	return &progressWriter{size: size, report: report}
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n := int64(len(b))
	total := p.written.Add(n)
	if p.report != nil {
		p.report(p.size, p.size-total)
	}
	return len(b), nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *contextReader) Read(p []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	default:
		return r.r.Read(p)
	}
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	return io.Copy(dst, &contextReader{ctx: ctx, r: src})
}
