// This file implements the transparent crypto layer that sits between a
// socket and the jitter buffer/codec: an Encryptor on egress, a Decryptor
// on ingress. Both are symmetric AES-256-CBC pipeline nodes with a
// per-packet IV derived from the RTP sequence number and SSRC; only the
// RTP payload is transformed, the header stays in clear so downstream
// nodes can still inspect sequence/timestamp/SSRC without decrypting.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/toxcore/transport"
)

// KeySize is the required symmetric key length for the AES-256-CBC crypto
// context.
const KeySize = 32

// rtpHeaderLen returns the length of the fixed+variable RTP header at the
// front of data, leaving the payload boundary for Encryptor/Decryptor to
// split on. It understands the CSRC list and a single extension header but
// not payload-specific framing, which is all the crypto layer needs to stay
// transparent to everything above it.
func rtpHeaderLen(data []byte) (int, error) {
	if len(data) < 12 {
		return 0, errors.New("crypto: packet shorter than RTP fixed header")
	}
	csrcCount := int(data[0] & 0x0F)
	hasExtension := data[0]&0x10 != 0
	headerLen := 12 + 4*csrcCount
	if len(data) < headerLen {
		return 0, errors.New("crypto: packet shorter than CSRC list")
	}
	if hasExtension {
		if len(data) < headerLen+4 {
			return 0, errors.New("crypto: packet shorter than extension header")
		}
		extWords := int(data[headerLen+2])<<8 | int(data[headerLen+3])
		headerLen += 4 + 4*extWords
		if len(data) < headerLen {
			return 0, errors.New("crypto: packet shorter than extension body")
		}
	}
	return headerLen, nil
}

// deriveIV builds a 16-byte AES-CBC IV from the RTP sequence number and
// SSRC found in the cleartext header, so each packet (and each stream) gets
// a distinct IV without needing to transmit one out of band.
func deriveIV(header []byte) [aes.BlockSize]byte {
	var iv [aes.BlockSize]byte
	// header[2:4] = sequence number, header[8:12] = SSRC (RFC 3550 layout).
	copy(iv[0:2], header[2:4])
	copy(iv[2:6], header[8:12])
	// Repeat the sequence/SSRC pair into the remaining bytes so the IV is
	// fully populated without introducing another source of randomness;
	// uniqueness comes from the (sequence, SSRC) pair, not from these bytes.
	copy(iv[6:10], header[2:4])
	copy(iv[10:14], header[8:12])
	copy(iv[14:16], header[2:4])
	return iv
}

func pkcs7Pad(data []byte) []byte {
	padLen := aes.BlockSize - len(data)%aes.BlockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, errors.New("crypto: ciphertext is not block-aligned")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(data) {
		return nil, errors.New("crypto: invalid PKCS7 padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, errors.New("crypto: invalid PKCS7 padding")
		}
	}
	return data[:len(data)-padLen], nil
}

// Encryptor is the egress crypto node. Dormant (before Start or after Stop)
// it is a no-op pass-through; Active it encrypts the RTP payload into a new
// packet buffer and forwards the result downstream.
type Encryptor struct {
	mu         sync.RWMutex
	downstream transport.Sink
	key        []byte
	active     atomic.Bool
}

// NewEncryptor constructs a Dormant Encryptor.
func NewEncryptor() *Encryptor {
	return &Encryptor{}
}

// SetDownstream sets the sink that receives encrypted packets.
func (e *Encryptor) SetDownstream(sink transport.Sink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.downstream = sink
}

// Start configures the AES-256-CBC context with the shared secret key.
func (e *Encryptor) Start(key []byte) error {
	if len(key) != KeySize {
		return errors.New("crypto: key must be 32 bytes for AES-256")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.key = append([]byte(nil), key...)
	e.active.Store(true)
	return nil
}

// Stop clears the key and returns the node to Dormant pass-through.
func (e *Encryptor) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active.Store(false)
	if e.key != nil {
		ZeroBytes(e.key)
		e.key = nil
	}
}

// Send encrypts packet's RTP payload (leaving the header in clear) and
// forwards it downstream. On a Dormant instance it is a no-op pass-through.
func (e *Encryptor) Send(packet *transport.Packet, addr *transport.Address) error {
	e.mu.RLock()
	downstream := e.downstream
	active := e.active.Load()
	key := e.key
	e.mu.RUnlock()

	if downstream == nil {
		return nil
	}
	if !active {
		return downstream.Send(packet, addr)
	}

	headerLen, err := rtpHeaderLen(packet.Data)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Encryptor.Send",
			"error":    err,
		}).Trace("dropping packet with unparseable RTP header")
		return nil
	}

	header := packet.Data[:headerLen]
	payload := packet.Data[headerLen:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	iv := deriveIV(header)
	padded := pkcs7Pad(payload)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv[:]).CryptBlocks(ciphertext, padded)

	out := make([]byte, headerLen+len(ciphertext))
	copy(out, header)
	copy(out[headerLen:], ciphertext)

	return downstream.Send(&transport.Packet{Data: out}, addr)
}

// Decryptor is the ingress crypto node, the mirror of Encryptor. A
// decryption failure never surfaces to upper layers: it increments a
// counter, logs at trace, and drops the packet, since late or reordered
// packets after a key rotation are expected.
type Decryptor struct {
	mu            sync.RWMutex
	downstream    transport.Sink
	key           []byte
	active        atomic.Bool
	failureCount  atomic.Uint64
}

// NewDecryptor constructs a Dormant Decryptor.
func NewDecryptor() *Decryptor {
	return &Decryptor{}
}

// SetDownstream sets the sink that receives decrypted packets.
func (d *Decryptor) SetDownstream(sink transport.Sink) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.downstream = sink
}

// Start configures the AES-256-CBC context with the shared secret key.
func (d *Decryptor) Start(key []byte) error {
	if len(key) != KeySize {
		return errors.New("crypto: key must be 32 bytes for AES-256")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.key = append([]byte(nil), key...)
	d.active.Store(true)
	return nil
}

// Stop clears the key and returns the node to Dormant pass-through.
func (d *Decryptor) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active.Store(false)
	if d.key != nil {
		ZeroBytes(d.key)
		d.key = nil
	}
}

// FailureCount returns the number of decryption failures observed so far,
// for diagnostics; it is never reset automatically.
func (d *Decryptor) FailureCount() uint64 {
	return d.failureCount.Load()
}

// Send decrypts packet's RTP payload and forwards it downstream. On a
// Dormant instance it is a no-op pass-through. A decryption failure drops
// the packet silently rather than surfacing an error.
func (d *Decryptor) Send(packet *transport.Packet, addr *transport.Address) error {
	d.mu.RLock()
	downstream := d.downstream
	active := d.active.Load()
	key := d.key
	d.mu.RUnlock()

	if downstream == nil {
		return nil
	}
	if !active {
		return downstream.Send(packet, addr)
	}

	headerLen, err := rtpHeaderLen(packet.Data)
	if err != nil {
		d.failureCount.Add(1)
		logrus.WithFields(logrus.Fields{
			"function": "Decryptor.Send",
			"error":    err,
		}).Trace("dropping packet with unparseable RTP header")
		return nil
	}

	header := packet.Data[:headerLen]
	ciphertext := packet.Data[headerLen:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		d.failureCount.Add(1)
		return nil
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	iv := deriveIV(header)
	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv[:]).CryptBlocks(padded, ciphertext)

	payload, err := pkcs7Unpad(padded)
	if err != nil {
		d.failureCount.Add(1)
		logrus.WithFields(logrus.Fields{
			"function": "Decryptor.Send",
			"failures": d.failureCount.Load(),
		}).Trace("dropping packet that failed authentication/padding check")
		return nil
	}

	out := make([]byte, headerLen+len(payload))
	copy(out, header)
	copy(out[headerLen:], payload)

	return downstream.Send(&transport.Packet{Data: out}, addr)
}
