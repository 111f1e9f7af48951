package capture

// Capture source defaults.
const (
	// DefaultDisplay is the X11 display grabbed when none is configured.
	DefaultDisplay = ":0.0"
	// DefaultVAAPIDevice is the render node used for VA-API encoding.
	DefaultVAAPIDevice = "/dev/dri/renderD128"
)

// Config accumulates capture settings. Setters return an updated copy, never fail,
// and may be called in any order; the last call for a field wins.
type Config struct {
	output      Output
	resultType  ResultType
	size        *Size
	position    *Position
	recordAudio bool
	audioDevice *AudioDevice
	accel       HardwareAccel
	display     string
	vaapiDevice string
}

// NewConfig returns an empty configuration writing to output.
func NewConfig(output Output) Config {
	return Config{output: output}
}

// SetResultType sets what the capture produces.
func (c Config) SetResultType(t ResultType) Config {
	c.resultType = t
	return c
}

// SetSize sets the captured region's dimensions.
func (c Config) SetSize(width, height int) Config {
	c.size = &Size{Width: width, Height: height}
	return c
}

// SetPosition sets the captured region's top-left corner.
func (c Config) SetPosition(x, y int) Config {
	c.position = &Position{X: x, Y: y}
	return c
}

// SetRecordAudio enables or disables audio recording for video captures.
func (c Config) SetRecordAudio(record bool) Config {
	c.recordAudio = record
	return c
}

// SetAudioDevice sets the audio source used when audio recording is enabled.
func (c Config) SetAudioDevice(dev AudioDevice) Config {
	c.audioDevice = &dev
	return c
}

// SetHardwareAcceleration selects the video encoder backend.
func (c Config) SetHardwareAcceleration(a HardwareAccel) Config {
	c.accel = a
	return c
}

// SetDisplay overrides the X11 display. An empty value restores DefaultDisplay.
func (c Config) SetDisplay(display string) Config {
	c.display = display
	return c
}

// SetVAAPIDevice overrides the VA-API render node. An empty value restores DefaultVAAPIDevice.
func (c Config) SetVAAPIDevice(path string) Config {
	c.vaapiDevice = path
	return c
}

// Output returns the configured destination.
func (c Config) Output() Output {
	return c.output
}

// ResultType returns the configured result type.
func (c Config) ResultType() ResultType {
	return c.resultType
}

// Size returns the captured region's dimensions, if set.
func (c Config) Size() (Size, bool) {
	if c.size == nil {
		return Size{}, false
	}
	return *c.size, true
}

// Position returns the captured region's top-left corner, if set.
func (c Config) Position() (Position, bool) {
	if c.position == nil {
		return Position{}, false
	}
	return *c.position, true
}

// HardwareAcceleration returns the selected video encoder backend.
func (c Config) HardwareAcceleration() HardwareAccel {
	return c.accel
}

// RecordAudio reports whether audio recording is enabled.
func (c Config) RecordAudio() bool {
	return c.recordAudio
}

// AudioDevice returns the configured audio source, if set.
func (c Config) AudioDevice() (AudioDevice, bool) {
	if c.audioDevice == nil {
		return AudioDevice{}, false
	}
	return *c.audioDevice, true
}

// Build compiles the configuration. It is shorthand for Compile(c).
func (c Config) Build() (Command, error) {
	return Compile(c)
}

func (c Config) displayName() string {
	if c.display == "" {
		return DefaultDisplay
	}
	return c.display
}

func (c Config) vaapiDevicePath() string {
	if c.vaapiDevice == "" {
		return DefaultVAAPIDevice
	}
	return c.vaapiDevice
}
