package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Report is the outcome of one batch. Skipped URLs never reached the
// transfer step; Failed ones did and did not produce a file.
type Report struct {
	BatchID   string
	Succeeded []string
	Failed    []string
	Skipped   []string
	Files     []string
	Outputs   map[string][]string
	Errors    map[string]error
}

// Submitted is the number of URLs that reached the transfer step.
func (r Report) Submitted() int {
	return len(r.Succeeded) + len(r.Failed)
}

// OK reports whether every submitted download succeeded and at least one did.
func (r Report) OK() bool {
	return len(r.Failed) == 0 && len(r.Succeeded) > 0
}

// Downloader drives a batch of URLs through resolution, a single quality
// choice and the transfers.
type Downloader struct {
	NewVideo VideoFactory
	Log      logrus.FieldLogger
	Printer  *Printer
	// Pause runs after the report of every batch that ran to completion.
	Pause func()
	// Attempts bounds the tries per download; DefaultAttempts when zero.
	Attempts int

	backoff retryConfig
}

// New returns a Downloader using factory to resolve URLs.
func New(factory VideoFactory, log logrus.FieldLogger, printer *Printer) *Downloader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if printer == nil {
		printer = NewPrinter(nil)
	}
	return &Downloader{
		NewVideo: factory,
		Log:      log,
		Printer:  printer,
		Attempts: DefaultAttempts,
		backoff:  retryConfig{InitialDelay: time.Second, MaxDelay: 8 * time.Second},
	}
}

// batch is the state of one DownloadMultiple call. chosen is the 1-based
// quality index, zero until the first video resolves. It is written by the
// controlling goroutine before any task is submitted.
type batch struct {
	opts   Options
	log    *logrus.Entry
	chosen int
	report Report
	order  map[string]int
}

// DownloadMultiple downloads every URL at the quality chosen for the first
// one that resolves. Repeated URLs are downloaded once. Per-URL failures are
// collected in the report; the returned error is set only when the whole
// batch had to stop, because the quality choice failed or ctx was cancelled.
func (d *Downloader) DownloadMultiple(ctx context.Context, urls []string, opts Options) (Report, error) {
	id := uuid.NewString()
	b := &batch{
		opts:   opts,
		log:    d.logger().WithField("batch", id),
		report: Report{BatchID: id, Outputs: map[string][]string{}, Errors: map[string]error{}},
		order:  make(map[string]int, len(urls)),
	}
	if len(urls) == 0 {
		b.log.Error("rien à télécharger")
		d.Printer.Println("[ERREUR] : il y a aucune vidéo à télécharger")
		return b.report, nil
	}
	unique := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, seen := b.order[u]; seen {
			b.log.WithField("url", u).Warn("url en double ignorée")
			continue
		}
		b.order[u] = len(unique)
		unique = append(unique, u)
	}
	urls = unique
	b.log.WithFields(logrus.Fields{
		"urls":       len(urls),
		"workers":    opts.workers(),
		"audio_only": opts.AudioOnly,
		"dir":        opts.savePath(),
	}).Info("début du lot")

	var pool *Pool
	if opts.workers() > 1 {
		pool = NewPool(ctx, opts.workers())
	}

	var abort error
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			b.skip(u, err)
			abort = err
			continue
		}
		task, err := d.prepare(ctx, b, u)
		if err != nil {
			abort = err
			break
		}
		if task == nil {
			continue
		}
		if pool != nil {
			pool.Submit(*task)
		} else {
			b.record(runTask(ctx, *task))
		}
	}
	if pool != nil {
		for _, r := range pool.Wait() {
			b.record(r)
		}
	}
	b.sort()

	if abort != nil {
		b.log.WithError(abort).Error("lot interrompu")
		return b.report, abort
	}
	d.finish(b)
	return b.report, nil
}

// prepare resolves one URL up to the point where only the transfer is left.
// A nil task means the URL was skipped. An error aborts the batch.
func (d *Downloader) prepare(ctx context.Context, b *batch, url string) (*Task, error) {
	log := b.log.WithField("url", url)

	video, err := d.NewVideo(ctx, url)
	if err != nil {
		log.WithError(err).Warn("vidéo inaccessible, URL ignorée")
		b.skip(url, err)
		return nil, nil
	}
	if b.opts.Progress != nil {
		video.OnProgress(Callback(b.opts.Progress, log))
	}

	streams, err := video.Streams(ctx)
	if err != nil {
		var access *StreamAccessError
		if !errors.As(err, &access) {
			err = &StreamAccessError{URL: url, Err: err}
		}
		log.WithError(err).Error("impossible de lister les flux")
		b.skip(url, err)
		return nil, nil
	}
	if len(streams) == 0 {
		err := &StreamAccessError{URL: url, Err: errors.New("aucun flux progressif mp4")}
		log.Warn("aucun flux disponible")
		b.skip(url, err)
		return nil, nil
	}

	title, err := video.Title()
	if err != nil {
		log.WithError(err).Error("titre illisible")
		b.skip(url, err)
		return nil, nil
	}
	d.Printer.Title(title)

	if b.chosen == 0 {
		index := 1
		if b.opts.Choose != nil {
			index, err = b.opts.Choose(b.opts.AudioOnly, streams)
			if err != nil {
				b.skip(url, err)
				return nil, err
			}
		}
		b.chosen = index
		log.WithField("index", index).Debug("qualité choisie pour le lot")
	}
	if b.chosen < 1 || b.chosen > len(streams) {
		err := wrapCategory(CategoryValidation, fmt.Errorf("qualité n°%d indisponible (%d flux)", b.chosen, len(streams)))
		log.WithError(err).Error("qualité hors limites")
		b.fail(url, err)
		return nil, nil
	}

	stream, ok := video.StreamByItag(streams[b.chosen-1].Itag)
	if !ok {
		err := &StreamAccessError{URL: url, Err: fmt.Errorf("itag %d introuvable", streams[b.chosen-1].Itag)}
		log.WithError(err).Error("flux introuvable")
		b.fail(url, err)
		return nil, nil
	}
	d.Printer.Selected(stream, b.opts.AudioOnly)

	dir := b.opts.savePath()
	if _, err := os.Stat(filepath.Join(dir, stream.DefaultFilename)); err == nil {
		d.Printer.Warn("un fichier MP4 portant le même nom, déjà existant!")
		log.WithField("file", stream.DefaultFilename).Warn("fichier existant écrasé")
	}

	return &Task{
		URL: url,
		Run: func(ctx context.Context) ([]string, error) {
			return d.transfer(ctx, b.opts, log, url, video, stream, title)
		},
	}, nil
}

// transfer downloads with retries and applies the audio step.
func (d *Downloader) transfer(ctx context.Context, opts Options, log *logrus.Entry, url string, video Video, stream Stream, title string) ([]string, error) {
	var path string
	attempts, err := Retry(ctx, d.attempts(), d.backoff, func(attempt int) error {
		if attempt > 1 {
			log.WithField("attempt", attempt).Warn("nouvelle tentative de téléchargement")
		}
		p, err := video.Download(ctx, stream, opts.savePath())
		if err != nil {
			log.WithError(err).WithField("attempt", attempt).Debug("échec du téléchargement")
			return err
		}
		path = p
		return nil
	})
	if err != nil {
		derr := &DownloadError{URL: url, Attempts: attempts, Err: err}
		log.WithError(derr).Error("téléchargement abandonné")
		return nil, derr
	}
	log.WithField("file", filepath.Base(path)).Info("téléchargement terminé")

	if opts.AudioOnly {
		converter := AudioConverter{Transcode: opts.Transcode, Tag: opts.TagAudio, Log: log}
		out, err := converter.Convert(path, AudioTags{Title: title, Artist: video.Author()})
		if err != nil {
			return nil, err
		}
		path = out
	}
	return []string{path}, nil
}

func (d *Downloader) finish(b *batch) {
	r := b.report
	if len(r.Skipped) > 0 {
		d.Printer.Println(fmt.Sprintf("%d URL(s) ignorée(s):", len(r.Skipped)))
		d.Printer.Println(FailureList(r.Skipped))
	}
	switch {
	case r.OK():
		b.log.WithField("files", len(r.Files)).Info("lot terminé")
		d.Printer.Done(len(r.Files))
	case len(r.Failed) > 0:
		b.log.WithField("failed", r.Failed).Error("des téléchargements ont échoué")
		d.Printer.Failures(r.Failed)
	default:
		b.log.Warn("aucune vidéo téléchargée")
		d.Printer.Println("Aucune vidéo n'a pu être téléchargée")
	}
	if d.Pause != nil {
		d.Pause()
	}
}

func (d *Downloader) attempts() int {
	if d.Attempts < 1 {
		return DefaultAttempts
	}
	return d.Attempts
}

func (d *Downloader) logger() logrus.FieldLogger {
	if d.Log == nil {
		return logrus.StandardLogger()
	}
	return d.Log
}

func (b *batch) skip(url string, err error) {
	b.report.Skipped = append(b.report.Skipped, url)
	b.report.Errors[url] = err
}

func (b *batch) fail(url string, err error) {
	b.report.Failed = append(b.report.Failed, url)
	b.report.Errors[url] = err
}

func (b *batch) record(r TaskResult) {
	if r.Err != nil {
		b.fail(r.URL, r.Err)
		return
	}
	b.report.Succeeded = append(b.report.Succeeded, r.URL)
	b.report.Files = append(b.report.Files, r.Files...)
	b.report.Outputs[r.URL] = append(b.report.Outputs[r.URL], r.Files...)
}

// sort puts the URL lists back in submission order.
func (b *batch) sort() {
	byOrder := func(list []string) {
		sort.SliceStable(list, func(i, j int) bool { return b.order[list[i]] < b.order[list[j]] })
	}
	byOrder(b.report.Succeeded)
	byOrder(b.report.Failed)
	byOrder(b.report.Skipped)
}
