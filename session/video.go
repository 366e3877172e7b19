package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxcore/av/rtp"
	"github.com/opd-ai/toxcore/av/video"
	"github.com/opd-ai/toxcore/crypto"
	"github.com/opd-ai/toxcore/jitter"
	"github.com/opd-ai/toxcore/transport"
)

// videoFrameDuration paces the jitter buffer's pump loop; it does not need
// to match the capture frame rate exactly since GetFrame is a no-op when
// nothing is ready to release.
const videoFrameDuration = 20 * time.Millisecond

// VideoFrameCallback receives one decoded incoming video frame.
type VideoFrameCallback func(frame *video.VideoFrame)

// videoInboundDemux sits between the decryptor and the jitter buffer and
// diverts key-frame-request packets before they ever reach frame
// reassembly; everything else passes through untouched.
type videoInboundDemux struct {
	mu                sync.RWMutex
	downstream        transport.Sink
	onKeyFrameRequest func()
}

func (d *videoInboundDemux) SetDownstream(sink transport.Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.downstream = sink
}

func (d *videoInboundDemux) Send(packet *transport.Packet, addr *transport.Address) error {
	if isKeyFrameRequest(packet.Data) {
		d.mu.RLock()
		cb := d.onKeyFrameRequest
		d.mu.RUnlock()
		if cb != nil {
			cb()
		}
		return nil
	}

	d.mu.RLock()
	downstream := d.downstream
	d.mu.RUnlock()
	if downstream == nil {
		return nil
	}
	return downstream.Send(packet, addr)
}

// videoPipeline wires one call leg's video stream end to end. Outgoing
// encoded frames are fragmented by a Splitter and sent through an
// Encryptor; incoming fragments run through a Decryptor, a demux that
// diverts out-of-band key-frame requests, an adaptive jitter buffer, and a
// Collector that reassembles whole frames for Processor to decode.
//
// Loss recovery crosses the call boundary as a pair of one-way edges: this
// side's Collector and Processor both raise a local callback on loss, which
// sendKeyFrameRequest turns into an out-of-band packet for the peer; the
// peer's demux recognizes it and calls its own Processor.ForceKeyFrame.
type videoPipeline struct {
	socket transport.Socket

	encryptor *crypto.Encryptor
	decryptor *crypto.Decryptor
	demux     *videoInboundDemux
	buffer    *jitter.Buffer
	splitter  *video.Splitter
	collector *video.Collector
	processor *video.Processor
	seq       *rtp.Sequencer

	remoteAddr *transport.Address
	onFrame    VideoFrameCallback

	mu         sync.Mutex
	lastSeq    uint16
	pumpStop   chan struct{}
	pumpDone   chan struct{}
}

func newVideoPipeline(socket transport.Socket, seq *rtp.Sequencer, onFrame VideoFrameCallback) *videoPipeline {
	p := &videoPipeline{
		socket:    socket,
		encryptor: crypto.NewEncryptor(),
		decryptor: crypto.NewDecryptor(),
		demux:     &videoInboundDemux{},
		buffer:    jitter.NewBuffer(jitter.ModeVideo, videoFrameDuration),
		splitter:  video.NewSplitter(seq),
		processor: video.NewProcessor(),
		seq:       seq,
		onFrame:   onFrame,
	}
	p.collector = video.NewCollector(p.deliverFrame, p.onReassemblyLoss)

	p.splitter.SetDownstream(p.encryptor)
	p.encryptor.SetDownstream(socket)
	socket.SetDownstream(p.decryptor)
	p.decryptor.SetDownstream(p.demux)
	p.demux.SetDownstream(p.buffer)
	p.demux.onKeyFrameRequest = p.processor.ForceKeyFrame

	p.processor.SetKeyFrameCallback(func(uint16) { p.sendKeyFrameRequest() })

	return p
}

func (p *videoPipeline) start(key []byte, remoteAddr *transport.Address) error {
	if err := p.encryptor.Start(key); err != nil {
		return fmt.Errorf("session: video encryptor start: %w", err)
	}
	if err := p.decryptor.Start(key); err != nil {
		return fmt.Errorf("session: video decryptor start: %w", err)
	}
	p.buffer.Start()
	p.remoteAddr = remoteAddr

	p.mu.Lock()
	p.pumpStop = make(chan struct{})
	p.pumpDone = make(chan struct{})
	p.mu.Unlock()
	go p.pump()

	return nil
}

func (p *videoPipeline) stop() {
	p.mu.Lock()
	stop := p.pumpStop
	done := p.pumpDone
	p.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	p.buffer.Stop()
	p.encryptor.Stop()
	p.decryptor.Stop()
	if err := p.processor.Close(); err != nil {
		logrus.WithFields(logrus.Fields{"function": "videoPipeline.stop", "error": err.Error()}).Error("failed to close video processor")
	}
}

// send encodes one raw frame and fragments it onto the wire.
func (p *videoPipeline) send(frame *video.VideoFrame) error {
	encoded, err := p.processor.ProcessOutgoing(frame)
	if err != nil {
		return fmt.Errorf("session: video encode: %w", err)
	}
	return p.splitter.Send(&transport.Packet{Data: encoded}, p.remoteAddr)
}

// pump drains the jitter buffer and feeds released fragments to the
// collector for reassembly.
func (p *videoPipeline) pump() {
	defer close(p.pumpDone)

	ticker := time.NewTicker(videoFrameDuration)
	defer ticker.Stop()

	for {
		select {
		case <-p.pumpStop:
			return
		case <-ticker.C:
		}

		pkt, ok := p.buffer.GetFrame()
		if !ok {
			continue
		}

		p.mu.Lock()
		p.lastSeq = pkt.SequenceNumber
		p.mu.Unlock()

		raw, err := pkt.Marshal()
		if err != nil {
			continue
		}
		if err := p.collector.Send(&transport.Packet{Data: raw}, nil); err != nil {
			logrus.WithFields(logrus.Fields{"function": "videoPipeline.pump", "error": err.Error()}).Trace("collector rejected released fragment")
		}
	}
}

// deliverFrame decodes a reassembled VP8 frame and forwards it to onFrame.
func (p *videoPipeline) deliverFrame(frame []byte, _ uint32) {
	p.mu.Lock()
	lastSeq := p.lastSeq
	p.mu.Unlock()

	decoded, err := p.processor.ProcessIncoming(frame, lastSeq)
	if err != nil {
		logrus.WithFields(logrus.Fields{"function": "videoPipeline.deliverFrame", "error": err.Error()}).Trace("video decode failed")
		return
	}
	if p.onFrame != nil {
		p.onFrame(decoded)
	}
}

// onReassemblyLoss is the Collector's loss callback: a sequence
// discontinuity. It resets Processor's key-frame bookkeeping (the next
// frame cannot be assumed to follow the last key frame) and asks the peer
// for a fresh one.
func (p *videoPipeline) onReassemblyLoss(uint16) {
	p.processor.Reset()
	p.sendKeyFrameRequest()
}

// sendKeyFrameRequest sends the out-of-band request packet straight through
// the encryptor, bypassing the splitter since it is not a fragment of an
// encoded frame.
func (p *videoPipeline) sendKeyFrameRequest() {
	raw, err := buildKeyFrameRequest(p.seq)
	if err != nil {
		logrus.WithFields(logrus.Fields{"function": "videoPipeline.sendKeyFrameRequest", "error": err.Error()}).Error("failed to build key frame request")
		return
	}
	if err := p.encryptor.Send(&transport.Packet{Data: raw}, p.remoteAddr); err != nil {
		logrus.WithFields(logrus.Fields{"function": "videoPipeline.sendKeyFrameRequest", "error": err.Error()}).Error("failed to send key frame request")
	}
}
