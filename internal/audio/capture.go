package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
)

// Capture reads the default input device and keeps the latest band levels.
type Capture struct {
	mu       sync.Mutex
	stream   *portaudio.Stream
	analyzer *Analyzer
	latest   []float64
	smooth   []float64
	log      zerolog.Logger
	active   bool
}

// NewCapture prepares a microphone source producing the given band count.
func NewCapture(bands int, log zerolog.Logger) *Capture {
	return &Capture{
		analyzer: NewAnalyzer(BufferSize, bands, SampleRate),
		log:      log.With().Str("component", "capture").Logger(),
	}
}

// Start opens an input-only stream on the default device.
func (c *Capture) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio: initialize: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, BufferSize, c.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio: open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audio: start input stream: %w", err)
	}

	c.mu.Lock()
	c.stream = stream
	c.active = true
	c.mu.Unlock()

	c.log.Info().Int("bands", c.analyzer.Bands()).Int("sample_rate", SampleRate).Msg("capture started")
	return nil
}

func (c *Capture) process(in []float32) {
	levels := c.analyzer.Process(in)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.smooth == nil {
		c.smooth = levels
	} else {
		for i, v := range levels {
			c.smooth[i] = smoothDb(c.smooth[i], v)
		}
	}
	c.latest = append(c.latest[:0], c.smooth...)
}

// Bands returns a copy of the latest levels, or nil before the first block.
func (c *Capture) Bands() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.latest == nil {
		return nil
	}
	return append([]float64(nil), c.latest...)
}

// Active reports whether the stream is running.
func (c *Capture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Close stops the stream and releases PortAudio.
func (c *Capture) Close() error {
	c.mu.Lock()
	stream := c.stream
	c.stream = nil
	c.active = false
	c.mu.Unlock()

	if stream == nil {
		return nil
	}
	var firstErr error
	if err := stream.Stop(); err != nil {
		firstErr = fmt.Errorf("audio: stop stream: %w", err)
	}
	if err := stream.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("audio: close stream: %w", err)
	}
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("audio: terminate: %w", err)
	}
	c.log.Info().Msg("capture stopped")
	return firstErr
}
