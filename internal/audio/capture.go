package audio

import (
	"encoding/hex"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/gen2brain/malgo"

	"github.com/tkarvinen/soundpulse/internal/errors"
	"github.com/tkarvinen/soundpulse/internal/logging"
)

// DeviceInfo holds information about an audio capture device.
type DeviceInfo struct {
	Index     int
	Name      string
	ID        string
	IsDefault bool
}

// CaptureConfig contains configuration for the soundcard capture source.
type CaptureConfig struct {
	Device     string // device name or decoded ID, "sysdefault" for system default
	SampleRate int
	ChunkSize  int
}

// CaptureSource captures audio from a soundcard through malgo. The
// driver callback appends samples to a pending buffer and pushes
// complete chunks into the FIFO; it never sleeps or blocks on the
// consumer.
type CaptureSource struct {
	config CaptureConfig
	queue  *chunkQueue

	ctx    *malgo.AllocatedContext
	device *malgo.Device

	// pending accumulates callback samples until a full chunk is
	// available. Touched only from the driver callback.
	pending []int16

	running atomic.Bool
	mu      sync.Mutex

	logger *slog.Logger
}

// NewCaptureSource creates a soundcard capture source.
func NewCaptureSource(config CaptureConfig) *CaptureSource {
	logger := logging.ForService("audio")
	if logger == nil {
		logger = slog.Default()
	}

	return &CaptureSource{
		config: config,
		queue:  newChunkQueue(defaultQueueCapacity),
		logger: logger.With("component", "capture_source", "device", config.Device),
	}
}

// Name returns a human-readable name for this source.
func (s *CaptureSource) Name() string {
	return "capture:" + s.config.Device
}

// Start opens the capture device and begins producing chunks.
func (s *CaptureSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return nil
	}

	malgoCtx, err := malgo.InitContext([]malgo.Backend{captureBackend()}, malgo.ContextConfig{}, nil)
	if err != nil {
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryAudioSource).
			Context("operation", "init_context").
			Context("backend", runtime.GOOS).
			Build()
	}
	s.ctx = malgoCtx

	infos, err := malgoCtx.Devices(malgo.Capture)
	if err != nil {
		_ = malgoCtx.Uninit()
		s.ctx = nil
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryAudioSource).
			Context("operation", "enumerate_devices").
			Build()
	}

	selected, err := selectCaptureDevice(infos, s.config.Device)
	if err != nil {
		_ = malgoCtx.Uninit()
		s.ctx = nil
		return err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.Capture.DeviceID = selected.pointer
	deviceConfig.SampleRate = uint32(s.config.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: s.onReceiveFrames,
		Stop: s.onDeviceStop,
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		_ = malgoCtx.Uninit()
		s.ctx = nil
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryAudioSource).
			Context("operation", "init_device").
			Context("device", s.config.Device).
			Build()
	}
	s.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = malgoCtx.Uninit()
		s.device = nil
		s.ctx = nil
		return errors.New(err).
			Component("audio").
			Category(errors.CategoryAudioSource).
			Context("operation", "start_device").
			Context("device", s.config.Device).
			Build()
	}

	s.running.Store(true)
	s.logger.Info("capture started",
		"device_name", selected.name,
		"sample_rate", s.config.SampleRate,
		"chunk_size", s.config.ChunkSize)

	return nil
}

// onReceiveFrames is the malgo data callback. It must return promptly to
// the driving runtime, so it only converts and pushes.
func (s *CaptureSource) onReceiveFrames(_, pSamples []byte, _ uint32) {
	s.pending = append(s.pending, bytesToSamples(pSamples)...)

	for len(s.pending) >= s.config.ChunkSize {
		samples := make([]int16, s.config.ChunkSize)
		copy(samples, s.pending[:s.config.ChunkSize])
		s.pending = s.pending[s.config.ChunkSize:]

		dropped := s.queue.push(&Chunk{
			Samples:    samples,
			SampleRate: s.config.SampleRate,
			Channels:   1,
			Timestamp:  time.Now(),
		})
		if dropped {
			s.logger.Warn("chunk queue full, dropped oldest chunk",
				"dropped_total", s.queue.droppedCount())
		}
	}
}

// onDeviceStop is called when the device stops, normally or not.
func (s *CaptureSource) onDeviceStop() {
	if s.running.Load() {
		s.logger.Warn("capture device stopped unexpectedly")
		s.running.Store(false)
	}
}

// GetChunk pops the oldest buffered chunk without blocking.
func (s *CaptureSource) GetChunk() *Chunk {
	return s.queue.pop()
}

// Stop halts capture and releases the device and context. Idempotent,
// and the source may be started again afterwards; a later Stop releases
// the new device too.
func (s *CaptureSource) Stop() {
	s.running.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.device == nil && s.ctx == nil {
		return
	}

	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}
	if s.ctx != nil {
		_ = s.ctx.Uninit()
		s.ctx.Free()
		s.ctx = nil
	}
	s.pending = nil
	s.queue.reset()
	s.logger.Info("capture stopped")
}

// Running reports whether the source is still producing chunks.
func (s *CaptureSource) Running() bool {
	return s.running.Load()
}

// ChunkDuration returns the play time of one chunk.
func (s *CaptureSource) ChunkDuration() time.Duration {
	return time.Duration(s.config.ChunkSize) * time.Second / time.Duration(s.config.SampleRate)
}

// captureBackend picks the native audio backend for the host OS, nil
// selection is left to miniaudio elsewhere.
func captureBackend() malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa
	case "windows":
		return malgo.BackendWasapi
	case "darwin":
		return malgo.BackendCoreaudio
	default:
		return malgo.BackendNull
	}
}

type selectedDevice struct {
	name    string
	id      string
	pointer unsafe.Pointer
}

// selectCaptureDevice matches the configured device name or ID against
// the enumerated capture devices.
func selectCaptureDevice(infos []malgo.DeviceInfo, device string) (selectedDevice, error) {
	for i := range infos {
		info := &infos[i]
		decodedID, err := hexToASCII(info.ID.String())
		if err != nil {
			continue
		}
		if matchesDeviceSetting(decodedID, info, device) {
			return selectedDevice{
				name:    info.Name(),
				id:      decodedID,
				pointer: info.ID.Pointer(),
			}, nil
		}
	}

	return selectedDevice{}, errors.Newf("no suitable capture device found for setting %q", device).
		Component("audio").
		Category(errors.CategoryAudioSource).
		Context("device", device).
		Build()
}

// matchesDeviceSetting checks if the device matches the user's setting.
func matchesDeviceSetting(decodedID string, info *malgo.DeviceInfo, device string) bool {
	if device == "" || device == "sysdefault" || device == "default" {
		if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
			// No "sysdefault" device on these platforms, use the
			// miniaudio default device instead.
			return info.IsDefault == 1
		}
		return strings.Contains(decodedID, "sysdefault") || info.IsDefault == 1
	}
	return decodedID == device || strings.Contains(info.Name(), device)
}

// hexToASCII converts a hexadecimal string to an ASCII string.
func hexToASCII(hexStr string) (string, error) {
	bytes, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(bytes), "\x00"), nil
}

// ListCaptureDevices returns the available audio capture devices.
func ListCaptureDevices() ([]DeviceInfo, error) {
	ctx, err := malgo.InitContext([]malgo.Backend{captureBackend()}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(err).
			Component("audio").
			Category(errors.CategoryAudioSource).
			Context("operation", "init_context").
			Build()
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, errors.New(err).
			Component("audio").
			Category(errors.CategoryAudioSource).
			Context("operation", "enumerate_devices").
			Build()
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for i := range infos {
		info := &infos[i]
		decodedID, err := hexToASCII(info.ID.String())
		if err != nil {
			continue
		}
		devices = append(devices, DeviceInfo{
			Index:     i,
			Name:      info.Name(),
			ID:        decodedID,
			IsDefault: info.IsDefault == 1,
		})
	}

	return devices, nil
}
