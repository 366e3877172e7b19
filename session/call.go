package session

import (
	"crypto/rand"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxcore/av/rtp"
	"github.com/opd-ai/toxcore/av/video"
	"github.com/opd-ai/toxcore/crypto"
	"github.com/opd-ai/toxcore/transport"
)

// Endpoint identifies a peer's media addresses, negotiated ahead of time
// over the signalling layer's request_media_addresses / media_addresses_list
// exchange.
type Endpoint struct {
	Host      net.IP
	AudioPort uint16
	VideoPort uint16
}

// Call brings up and tears down the full media pipeline for one call leg:
// one audio stream and one video stream, each with its own UDP socket and
// SSRC, sharing a single AES-256-CBC key for both directions. Calls are
// identified by a uuid rather than the signalling layer's bare int64
// member id, since a member may have more than one call in flight (a
// symmetric conference connects every pair of members).
type Call struct {
	ID            uuid.UUID
	MemberID      int64
	ConferenceTag string

	ports *PortAllocator

	audioPort   uint16
	videoPort   uint16
	audioSocket *transport.UDPSocket
	videoSocket *transport.UDPSocket

	audio *audioPipeline
	video *videoPipeline

	mu      sync.Mutex
	started bool
}

// NewCall allocates ports and SSRCs for a new call leg. The returned Call
// is Dormant until Start is given the peer's negotiated endpoint and the
// shared symmetric key.
func NewCall(ports *PortAllocator, conferenceTag string, memberID int64, onPCM PCMCallback, onFrame VideoFrameCallback) (*Call, error) {
	audioPort, err := ports.Allocate()
	if err != nil {
		return nil, fmt.Errorf("session: allocate audio port: %w", err)
	}
	videoPort, err := ports.Allocate()
	if err != nil {
		ports.Release(audioPort)
		return nil, fmt.Errorf("session: allocate video port: %w", err)
	}

	audioSeq, err := rtp.NewSequencer(rtp.DefaultSSRCProvider{})
	if err != nil {
		ports.Release(audioPort)
		ports.Release(videoPort)
		return nil, fmt.Errorf("session: allocate audio ssrc: %w", err)
	}
	videoSeq, err := rtp.NewSequencer(rtp.DefaultSSRCProvider{})
	if err != nil {
		ports.Release(audioPort)
		ports.Release(videoPort)
		return nil, fmt.Errorf("session: allocate video ssrc: %w", err)
	}

	audioSocket := transport.NewUDPSocket()
	videoSocket := transport.NewUDPSocket()

	c := &Call{
		ID:            uuid.New(),
		MemberID:      memberID,
		ConferenceTag: conferenceTag,
		ports:         ports,
		audioPort:     audioPort,
		videoPort:     videoPort,
		audioSocket:   audioSocket,
		videoSocket:   videoSocket,
		audio:         newAudioPipeline(audioSocket, audioSeq, onPCM),
		video:         newVideoPipeline(videoSocket, videoSeq, onFrame),
	}

	logrus.WithFields(logrus.Fields{
		"function":       "NewCall",
		"call_id":        c.ID,
		"conference_tag": conferenceTag,
		"member_id":      memberID,
		"audio_port":     audioPort,
		"video_port":     videoPort,
	}).Info("allocated call pipeline")

	return c, nil
}

// LocalEndpoint reports the ports this call's sockets bind to, for the
// signalling layer's media_addresses_list reply.
func (c *Call) LocalEndpoint() (audioPort, videoPort uint16) {
	return c.audioPort, c.videoPort
}

// Start binds both sockets, activates the crypto/jitter/codec stages with
// key, and begins addressing outgoing packets to remote. Idempotent.
func (c *Call) Start(key []byte, remote Endpoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}

	if err := c.audioSocket.Start(fmt.Sprintf(":%d", c.audioPort)); err != nil {
		return fmt.Errorf("session: bind audio socket: %w", err)
	}
	if err := c.videoSocket.Start(fmt.Sprintf(":%d", c.videoPort)); err != nil {
		c.audioSocket.Stop()
		return fmt.Errorf("session: bind video socket: %w", err)
	}

	audioAddr := transport.NewAddress(remote.Host, remote.AudioPort)
	videoAddr := transport.NewAddress(remote.Host, remote.VideoPort)

	if err := c.audio.start(key, &audioAddr); err != nil {
		c.audioSocket.Stop()
		c.videoSocket.Stop()
		return err
	}
	if err := c.video.start(key, &videoAddr); err != nil {
		c.audio.stop()
		c.audioSocket.Stop()
		c.videoSocket.Stop()
		return err
	}

	c.started = true
	return nil
}

// Stop tears down the pipeline and releases both ports back to the
// allocator. Idempotent.
func (c *Call) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return
	}

	c.audio.stop()
	c.video.stop()
	if err := c.audioSocket.Stop(); err != nil {
		logrus.WithFields(logrus.Fields{"function": "Call.Stop", "call_id": c.ID, "error": err.Error()}).Error("failed to stop audio socket")
	}
	if err := c.videoSocket.Stop(); err != nil {
		logrus.WithFields(logrus.Fields{"function": "Call.Stop", "call_id": c.ID, "error": err.Error()}).Error("failed to stop video socket")
	}

	c.ports.Release(c.audioPort)
	c.ports.Release(c.videoPort)
	c.started = false
}

// SendAudio encodes and sends one PCM frame to the peer.
func (c *Call) SendAudio(pcm []int16, sampleRate uint32) error {
	return c.audio.send(pcm, sampleRate)
}

// SendVideo encodes and sends one raw video frame to the peer.
func (c *Call) SendVideo(frame *video.VideoFrame) error {
	return c.video.send(frame)
}

// GenerateKey returns a fresh random AES-256 key for a new call. The
// out-of-band exchange of this key with the peer rides the signalling
// channel's existing connect/call handshake, not a dedicated command.
func GenerateKey() ([]byte, error) {
	key := make([]byte, crypto.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("session: generate key: %w", err)
	}
	return key, nil
}
