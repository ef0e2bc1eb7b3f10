package settings

import (
	"os"
	"runtime"

	"github.com/oomph-ac/enginetrace/oerror"
	"github.com/pelletier/go-toml"
)

// Settings contains everything that can be tuned for traces and occlusion queries.
type Settings struct {
	Trace     Trace
	Occlusion Occlusion
}

// Trace holds the settings of the trace engine.
type Trace struct {
	// DebugRayLimit is the amount of unique rays the debug recorder keeps.
	DebugRayLimit int
	// ListPadding is how far a leaf and body list box is grown on every axis.
	ListPadding float32
	// BoxIntersectEpsilon is the tolerance used when rejecting bodies whose bounds a
	// sweep cannot reach.
	BoxIntersectEpsilon float32
}

// Occlusion holds the settings of the occlusion query cache.
type Occlusion struct {
	// Margins is the amount by which the observer box is expanded horizontally. It
	// should cover movement within a frame or two and the longest held item.
	Margins float32
	// JumpMargin is the amount by which the observer box is expanded upwards to
	// account for jumping.
	JumpMargin float32
	// ShadowMaxDistance is the max distance at which shadows are considered.
	ShadowMaxDistance float32
	// Async enables asynchronous occlusion tests. A value of 2 or more also runs
	// queued tests while testing is suspended.
	Async int
	// MoveTolerance is how far boxes may move before a cached query is replaced.
	MoveTolerance float32
	// Jitter is how far boxes may move before a completed query is requeued.
	Jitter float32
	// Workers is the number of goroutines running occlusion jobs.
	Workers int
}

// DefaultSettings returns the default settings.
func DefaultSettings() Settings {
	s := Settings{}
	s.Trace.DebugRayLimit = 500
	s.Trace.ListPadding = 1
	s.Trace.BoxIntersectEpsilon = 1.0 / 32.0

	s.Occlusion.Margins = 36
	s.Occlusion.JumpMargin = 12
	s.Occlusion.ShadowMaxDistance = 1500
	s.Occlusion.Async = 0
	s.Occlusion.MoveTolerance = 8.25
	s.Occlusion.Jitter = 2
	s.Occlusion.Workers = runtime.NumCPU()
	return s
}

// SaveDefault will create and save the default settings file. If the file already exists, it will return an error.
func SaveDefault(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return oerror.New("settings file already exists")
	}
	data, err := toml.Marshal(DefaultSettings())
	if err != nil {
		return oerror.New("failed encoding default settings: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return oerror.New("failed creating settings file: %v", err)
	}
	return nil
}

// Load will load the settings from your settings file, and return an error if the file does not exist.
// Values missing from the file keep their defaults.
func Load(path string) (Settings, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Settings{}, oerror.New("settings file doesn't exist")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, oerror.New("error reading config: %v", err)
	}

	s := DefaultSettings()
	if err = toml.Unmarshal(data, &s); err != nil {
		return Settings{}, oerror.New("error decoding config: %v", err)
	}
	return s, nil
}
