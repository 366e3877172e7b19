package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxcore/av/audio"
	"github.com/opd-ai/toxcore/av/rtp"
	"github.com/opd-ai/toxcore/crypto"
	"github.com/opd-ai/toxcore/jitter"
	"github.com/opd-ai/toxcore/transport"
)

// audioFrameDuration is the nominal Opus frame length this pipeline
// captures and sends at; it also paces the jitter buffer's pump loop.
const audioFrameDuration = 20 * time.Millisecond

// PCMCallback receives one decoded frame of incoming audio.
type PCMCallback func(pcm []int16, sampleRate uint32)

// audioPipeline wires one call leg's audio stream end to end: outgoing PCM
// is encoded by Processor, stamped by an RTP sequencer, and sent through
// an Encryptor onto a socket; incoming packets run the same chain in
// reverse through a Decryptor, an adaptive jitter buffer, and back to
// Processor.
type audioPipeline struct {
	encryptor *crypto.Encryptor
	decryptor *crypto.Decryptor
	buffer    *jitter.Buffer
	processor *audio.Processor
	seq       *rtp.Sequencer

	remoteAddr *transport.Address
	onPCM      PCMCallback

	mu       sync.Mutex
	pumpStop chan struct{}
	pumpDone chan struct{}
}

// newAudioPipeline wires the stages together but does not start them; call
// start once the socket is bound and the remote address is known.
func newAudioPipeline(socket transport.Socket, seq *rtp.Sequencer, onPCM PCMCallback) *audioPipeline {
	p := &audioPipeline{
		encryptor: crypto.NewEncryptor(),
		decryptor: crypto.NewDecryptor(),
		buffer:    jitter.NewBuffer(jitter.ModeAudio, audioFrameDuration),
		processor: audio.NewProcessor(),
		seq:       seq,
		onPCM:     onPCM,
	}

	p.encryptor.SetDownstream(socket)
	socket.SetDownstream(p.decryptor)
	p.decryptor.SetDownstream(p.buffer)

	return p
}

// start activates the crypto and jitter-buffer stages with the call's
// shared key and begins pumping decoded frames out of the jitter buffer.
func (p *audioPipeline) start(key []byte, remoteAddr *transport.Address) error {
	if err := p.encryptor.Start(key); err != nil {
		return fmt.Errorf("session: audio encryptor start: %w", err)
	}
	if err := p.decryptor.Start(key); err != nil {
		return fmt.Errorf("session: audio decryptor start: %w", err)
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

// stop halts the pump goroutine and returns every stage to Dormant.
func (p *audioPipeline) stop() {
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
		logrus.WithFields(logrus.Fields{"function": "audioPipeline.stop", "error": err.Error()}).Error("failed to close audio processor")
	}
}

// send encodes one PCM frame and sends it downstream through the
// encryptor, stamping it with the next sequence number and timestamp.
func (p *audioPipeline) send(pcm []int16, sampleRate uint32) error {
	encoded, err := p.processor.ProcessOutgoing(pcm, sampleRate)
	if err != nil {
		return fmt.Errorf("session: audio encode: %w", err)
	}

	seqNum, ts := p.seq.Next(uint32(len(pcm)))
	pkt := &rtp.Packet{
		SequenceNumber: seqNum,
		Timestamp:      ts,
		SSRC:           p.seq.SSRC,
		PayloadType:    rtp.AudioPayloadType,
		Payload:        encoded,
	}
	raw, err := pkt.Marshal()
	if err != nil {
		return fmt.Errorf("session: audio marshal: %w", err)
	}

	return p.encryptor.Send(&transport.Packet{Data: raw}, p.remoteAddr)
}

// pump drains the jitter buffer at its nominal frame cadence, forwarding
// decoded PCM (or PLC concealment for a synthesized gap filler) to onPCM.
func (p *audioPipeline) pump() {
	defer close(p.pumpDone)

	ticker := time.NewTicker(audioFrameDuration)
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

		if len(pkt.Payload) == 0 {
			pcm, err := p.processor.ProcessConcealment()
			if err != nil {
				logrus.WithFields(logrus.Fields{"function": "audioPipeline.pump", "error": err.Error()}).Trace("concealment synthesis failed")
				continue
			}
			if p.onPCM != nil {
				p.onPCM(pcm, 48000)
			}
			continue
		}

		pcm, sampleRate, err := p.processor.ProcessIncoming(pkt.Payload)
		if err != nil {
			logrus.WithFields(logrus.Fields{"function": "audioPipeline.pump", "error": err.Error()}).Trace("audio decode failed")
			continue
		}
		if p.onPCM != nil {
			p.onPCM(pcm, sampleRate)
		}
	}
}
