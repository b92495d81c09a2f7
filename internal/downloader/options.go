package downloader

// ChoiceFunc picks a 1-based index out of streams.
type ChoiceFunc func(audioOnly bool, streams []Stream) (int, error)

// Options configures one batch. The orchestrator never modifies it.
type Options struct {
	SavePath   string
	AudioOnly  bool
	Choose     ChoiceFunc
	Progress   ProgressHandler
	MaxWorkers int

	// Transcode re-encodes to real MP3 with ffmpeg when it is installed,
	// instead of only renaming the container.
	Transcode bool
	// TagAudio writes title and artist ID3 frames into produced .mp3 files.
	TagAudio bool
}

func (o Options) workers() int {
	if o.MaxWorkers < 1 {
		return 1
	}
	return o.MaxWorkers
}

func (o Options) savePath() string {
	if o.SavePath == "" {
		return "."
	}
	return o.SavePath
}
