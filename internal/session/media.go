package session

import "context"

// MediaHandle wraps an acquired camera+microphone stream. The concrete
// stream lives at the client boundary; the server side only controls its
// lifecycle.
type MediaHandle interface {
	// StopTracks releases the underlying stream. Implementations must
	// tolerate being called more than once.
	StopTracks()
}

// DeviceGateway is the opaque browser media collaborator: one combined
// camera+microphone request.
type DeviceGateway interface {
	Acquire(ctx context.Context) (MediaHandle, error)
}

// MediaLifecycle owns the session's single MediaHandle.
type MediaLifecycle struct {
	handle  MediaHandle
	granted bool
}

// NewMediaLifecycle creates an empty lifecycle manager.
func NewMediaLifecycle() *MediaLifecycle {
	return &MediaLifecycle{}
}

// Acquire requests camera+microphone through the gateway. If a handle is
// already live it is returned as-is — never a second acquisition. On
// failure the state stays not-granted so the caller can retry.
func (m *MediaLifecycle) Acquire(ctx context.Context, gw DeviceGateway) (MediaHandle, error) {
	if m.handle != nil {
		return m.handle, nil
	}
	h, err := gw.Acquire(ctx)
	if err != nil {
		m.granted = false
		return nil, &MediaAccessDeniedError{Reason: err.Error()}
	}
	m.handle = h
	m.granted = true
	return h, nil
}

// Release stops all tracks of the current handle, then clears it.
// Safe to call when no handle exists; double release is a no-op.
func (m *MediaLifecycle) Release() {
	if m.handle == nil {
		return
	}
	m.handle.StopTracks()
	m.handle = nil
}

// Granted reports whether permissions were successfully obtained.
func (m *MediaLifecycle) Granted() bool { return m.granted }

// Handle returns the live handle, or nil.
func (m *MediaLifecycle) Handle() MediaHandle { return m.handle }

// ResolvedGateway adapts an already-obtained client result to the
// DeviceGateway contract. The WebSocket transport reports grant/deny as an
// event, so by the time the controller acquires, the outcome is known.
type ResolvedGateway struct {
	Handle MediaHandle
	Err    error
}

func (g ResolvedGateway) Acquire(ctx context.Context) (MediaHandle, error) {
	if g.Err != nil {
		return nil, g.Err
	}
	return g.Handle, nil
}
