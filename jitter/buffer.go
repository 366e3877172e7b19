// Package jitter implements the adaptive jitter buffer shared by the audio
// and video receive chains: a scalar Kalman filter smooths the packet
// arrival interval, and the standard deviation of recent arrival intervals
// drives how many frames of reserve the buffer holds before it starts
// releasing packets to the decoder.
//
// Grounded on the reference jitter buffer's field layout (mode, buffering,
// reserveCount, prevRxTS/rxInterval, stateRxTS/covarianceRxTS, checkTime,
// prevSeq): a deque ordered by sequence number, a Kalman-corrected arrival
// estimate, and a periodic recomputation of how many frames to hold back.
package jitter

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxcore/av/rtp"
	"github.com/opd-ai/toxcore/transport"
)

// Mode selects the reserve-count clamp range and the single-gap recovery
// strategy (PLC synthesis for audio, pass-through for video).
type Mode int

const (
	// ModeVideo clamps reserveCount to [1, 12] frames and never synthesises
	// a filler packet on a single-gap loss; the decoder requests a key
	// frame instead.
	ModeVideo Mode = iota
	// ModeAudio clamps reserveCount to [2, 25] frames and synthesises one
	// empty packet on a single-gap loss so Opus's PLC can conceal it.
	ModeAudio
)

const (
	// kalmanProcessNoise is the Kalman filter's process-noise constant Q.
	kalmanProcessNoise = 0.001
	// statWindow is the number of recent interarrival samples used to
	// derive the Kalman measurement-noise R and the reserve-count stddev.
	statWindow = 50
	// reserveRecomputeInterval bounds how often reserveCount is refreshed.
	reserveRecomputeInterval = 200 * time.Millisecond
	// kJitter is the safety-margin multiplier applied to the interval
	// standard deviation when deriving reserveCount. The reference jitter
	// buffer does not document its derivation; three standard deviations
	// is the conventional choice and is treated here as a tuned constant.
	kJitter = 3.0

	minReserveVideo = 1
	maxReserveVideo = 12
	minReserveAudio = 2
	maxReserveAudio = 25
)

// TimeProvider abstracts wall-clock access for deterministic tests.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider uses the standard time package.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// entry is one buffered frame, kept sorted by RTP sequence number.
type entry struct {
	packet *rtp.Packet
}

// Buffer is the adaptive jitter buffer. It implements transport.Sink so it
// can sit directly downstream of a decryptor or collector in the pipeline.
type Buffer struct {
	mu sync.Mutex

	mode          Mode
	frameDuration time.Duration
	timeProvider  TimeProvider
	running       bool

	deque       []entry
	maxCapacity int
	buffering   bool
	reserveCount int

	hasPrevRx  bool
	prevRxTime time.Time
	rxInterval time.Duration

	stateRxTS      float64
	covarianceRxTS float64
	recentDeltas   []float64
	checkTime      time.Time

	hasPrevSeq bool
	prevSeq    uint16
}

// NewBuffer constructs a Dormant jitter buffer for the given mode and
// nominal frame duration (20ms for both Opus and the video capture in this
// pipeline).
func NewBuffer(mode Mode, frameDuration time.Duration) *Buffer {
	return NewBufferWithTimeProvider(mode, frameDuration, DefaultTimeProvider{})
}

// NewBufferWithTimeProvider is NewBuffer with an injectable clock, for
// deterministic tests of the Kalman filter and reserve-count logic.
func NewBufferWithTimeProvider(mode Mode, frameDuration time.Duration, tp TimeProvider) *Buffer {
	if tp == nil {
		tp = DefaultTimeProvider{}
	}
	reserve := minReserveVideo
	if mode == ModeAudio {
		reserve = minReserveAudio
	}
	return &Buffer{
		mode:           mode,
		frameDuration:  frameDuration,
		timeProvider:   tp,
		maxCapacity:    256,
		reserveCount:   reserve,
		buffering:      true,
		covarianceRxTS: 1.0,
	}
}

// Start transitions the buffer to Active. IsStarted before Start or after
// Stop is false.
func (b *Buffer) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = true
}

// Stop transitions the buffer to Dormant and discards all buffered frames.
// Stop is idempotent.
func (b *Buffer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = false
	b.deque = nil
	b.buffering = true
	b.hasPrevSeq = false
	b.hasPrevRx = false
}

// IsStarted reports whether the buffer is Active.
func (b *Buffer) IsStarted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Send parses an RTP packet and inserts it in sequence order. On a Dormant
// buffer it is a no-op. Late packets (sequence <= the last delivered
// sequence) and insertions past capacity are dropped, matching the
// reference buffer's "sink cannot keep up" behaviour.
func (b *Buffer) Send(packet *transport.Packet, _ *transport.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil
	}

	pkt := &rtp.Packet{}
	if err := pkt.Unmarshal(packet.Data); err != nil {
		logrus.WithFields(logrus.Fields{"function": "Buffer.Send", "error": err}).Trace("dropping unparseable RTP packet")
		return nil
	}

	now := b.timeProvider.Now()
	b.updateKalman(now)
	b.maybeRecomputeReserve(now)

	if b.hasPrevSeq && seqLessOrEqual(pkt.SequenceNumber, b.prevSeq) {
		logrus.WithFields(logrus.Fields{"function": "Buffer.Send", "seq": pkt.SequenceNumber, "prev": b.prevSeq}).Trace("dropping late packet")
		return nil
	}

	if len(b.deque) >= b.maxCapacity {
		logrus.WithFields(logrus.Fields{"function": "Buffer.Send", "seq": pkt.SequenceNumber}).Trace("dropping packet: buffer full")
		return nil
	}
	b.insert(entry{packet: pkt})

	return nil
}

// insert places e into the deque at the position that keeps it sorted by
// sequence number, via binary search.
func (b *Buffer) insert(e entry) {
	left, right := 0, len(b.deque)
	for left < right {
		mid := (left + right) / 2
		if seqLess(b.deque[mid].packet.SequenceNumber, e.packet.SequenceNumber) {
			left = mid + 1
		} else {
			right = mid
		}
	}
	b.deque = append(b.deque, entry{})
	copy(b.deque[left+1:], b.deque[left:])
	b.deque[left] = e
}

// GetFrame pops the next frame in sequence order if the buffer has
// accumulated reserveCount frames (the initial fill threshold) or has
// already started draining. It returns (nil, false) while still buffering
// or once the deque is empty.
//
// The single-gap filler check happens here, against the last *delivered*
// sequence number, not at Send time: a producer can enqueue several packets
// before the next drain, and whether a gap is a genuine loss can only be
// judged against what was actually handed to the decoder, not what has
// merely arrived.
func (b *Buffer) GetFrame() (*rtp.Packet, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil, false
	}
	if b.buffering {
		if len(b.deque) < b.reserveCount {
			return nil, false
		}
		b.buffering = false
	}
	if len(b.deque) == 0 {
		b.buffering = true
		return nil, false
	}

	e := b.deque[0]

	if b.mode == ModeAudio && b.hasPrevSeq && e.packet.SequenceNumber == b.prevSeq+2 {
		filler := &rtp.Packet{SequenceNumber: b.prevSeq + 1, Timestamp: e.packet.Timestamp, Payload: nil}
		b.prevSeq = filler.SequenceNumber
		return filler, true
	}

	b.deque = b.deque[1:]
	b.prevSeq = e.packet.SequenceNumber
	b.hasPrevSeq = true
	return e.packet, true
}

// ReadFrame peeks at the next frame without removing it from the deque. It
// is subject to the same buffering gate as GetFrame.
func (b *Buffer) ReadFrame() (*rtp.Packet, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running || b.buffering || len(b.deque) == 0 {
		return nil, false
	}
	return b.deque[0].packet, true
}

// Len returns the number of frames currently buffered.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.deque)
}

// ReserveCount returns the current reserve-count target, for diagnostics.
func (b *Buffer) ReserveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reserveCount
}

func (b *Buffer) updateKalman(now time.Time) {
	if !b.hasPrevRx {
		b.hasPrevRx = true
		b.prevRxTime = now
		b.stateRxTS = float64(b.frameDuration.Milliseconds())
		return
	}

	delta := now.Sub(b.prevRxTime)
	b.rxInterval = delta
	b.prevRxTime = now

	deltaMs := float64(delta.Microseconds()) / 1000.0

	b.recentDeltas = append(b.recentDeltas, deltaMs)
	if len(b.recentDeltas) > statWindow {
		b.recentDeltas = b.recentDeltas[len(b.recentDeltas)-statWindow:]
	}

	r := stddev(b.recentDeltas)
	if r <= 0 {
		r = 1.0
	}

	gain := b.covarianceRxTS / (b.covarianceRxTS + r)
	b.stateRxTS += gain * (deltaMs - b.stateRxTS)
	b.covarianceRxTS = (1-gain)*b.covarianceRxTS + kalmanProcessNoise
}

func (b *Buffer) maybeRecomputeReserve(now time.Time) {
	if b.checkTime.IsZero() {
		b.checkTime = now
		return
	}
	if now.Sub(b.checkTime) < reserveRecomputeInterval {
		return
	}
	b.checkTime = now

	if len(b.recentDeltas) < 2 {
		return
	}
	sd := stddev(b.recentDeltas)
	frameMs := float64(b.frameDuration.Milliseconds())
	if frameMs <= 0 {
		frameMs = 20
	}
	reserve := int(math.Ceil(kJitter * sd / frameMs))

	minR, maxR := minReserveVideo, maxReserveVideo
	if b.mode == ModeAudio {
		minR, maxR = minReserveAudio, maxReserveAudio
	}
	if reserve < minR {
		reserve = minR
	}
	if reserve > maxR {
		reserve = maxR
	}
	b.reserveCount = reserve
}

func stddev(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var mean float64
	for _, s := range samples {
		mean += s
	}
	mean /= float64(len(samples))

	var variance float64
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(samples))
	return math.Sqrt(variance)
}

// seqLess reports whether a precedes b under RTP sequence-number wraparound
// (modulo 2^16), treating differences larger than half the space as having
// wrapped.
func seqLess(a, b uint16) bool {
	return int16(a-b) < 0
}

func seqLessOrEqual(a, b uint16) bool {
	return a == b || seqLess(a, b)
}
