package session

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallStartBindsPortsAndStopReleasesThem(t *testing.T) {
	ports := NewPortAllocator()
	call, err := NewCall(ports, "conf-1", 42, nil, nil)
	require.NoError(t, err)

	audioPort, videoPort := call.LocalEndpoint()
	assert.True(t, ports.InUse(audioPort))
	assert.True(t, ports.InUse(videoPort))

	key, err := GenerateKey()
	require.NoError(t, err)

	remote := Endpoint{Host: net.ParseIP("127.0.0.1"), AudioPort: audioPort, VideoPort: videoPort}
	require.NoError(t, call.Start(key, remote))

	call.Stop()
	assert.False(t, ports.InUse(audioPort))
	assert.False(t, ports.InUse(videoPort))

	// Stop is idempotent.
	call.Stop()
}

// TestCallLoopbackDeliversAudio points a call's remote endpoint at its own
// bound ports, so sending a frame exercises encrypt, send, receive,
// decrypt, jitter-buffer, and decode in one pass.
func TestCallLoopbackDeliversAudio(t *testing.T) {
	ports := NewPortAllocator()

	var mu sync.Mutex
	var received int
	onPCM := func(pcm []int16, _ uint32) {
		mu.Lock()
		defer mu.Unlock()
		received += len(pcm)
	}

	call, err := NewCall(ports, "conf-1", 1, onPCM, nil)
	require.NoError(t, err)
	audioPort, videoPort := call.LocalEndpoint()

	key, err := GenerateKey()
	require.NoError(t, err)

	remote := Endpoint{Host: net.ParseIP("127.0.0.1"), AudioPort: audioPort, VideoPort: videoPort}
	require.NoError(t, call.Start(key, remote))
	defer call.Stop()

	pcm := make([]int16, 960) // 20ms of mono PCM at 48kHz
	go func() {
		for i := 0; i < 20; i++ {
			_ = call.SendAudio(pcm, 48000)
			time.Sleep(10 * time.Millisecond)
		}
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return received > 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestManagerStartAndEndCall(t *testing.T) {
	m := NewManager()
	key, err := GenerateKey()
	require.NoError(t, err)

	call, err := m.StartCall("conf-1", 7, key, Endpoint{Host: net.ParseIP("127.0.0.1"), AudioPort: 1, VideoPort: 2}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, m.ActiveCount())

	got, ok := m.Call(call.ID)
	require.True(t, ok)
	assert.Equal(t, call, got)

	m.EndCall(call.ID)
	assert.Equal(t, 0, m.ActiveCount())

	_, ok = m.Call(call.ID)
	assert.False(t, ok)
}
