package signal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultWindowOffset is the shared count of trailing points in a segment
// reserved as the post-stimulus boundary. Segments carry this many
// response points after the baseline.
const DefaultWindowOffset = 100

// PipelineConfig is the JSON configuration for a feature pipeline. Fields
// omitted from the file keep their defaults, so partial configs are safe.
// The window offset is an explicit field threaded into every transform
// that needs it rather than ambient package state.
type PipelineConfig struct {
	// Segment geometry
	WindowOffset       *int `json:"window_offset,omitempty"`
	PostStimulusOffset *int `json:"post_stimulus_offset,omitempty"`

	// Electrode combination: "avg" or "diff"
	ElectrodeCombine *string `json:"electrode_combine,omitempty"`

	// Baseline handling
	Detrend     *bool `json:"detrend,omitempty"`
	PreStimulus *bool `json:"pre_stimulus,omitempty"` // negative-control check

	// Optional signal conditioning before the ensemble
	DecimationFactor *int    `json:"decimation_factor,omitempty"`
	MovingAvgWidth   *int    `json:"moving_avg_width,omitempty"`
	NoiseWidth       *int    `json:"noise_width,omitempty"`
	Wavelet          *string `json:"wavelet,omitempty"` // "haar" or "db4"
	WaveletLevel     *int    `json:"wavelet_level,omitempty"`
	WaveletDrop      *int    `json:"wavelet_drop,omitempty"`

	// Ensemble orchestration
	WindowCount *int  `json:"window_count,omitempty"`
	Hann        *bool `json:"hann,omitempty"`
	MultiScale  *bool `json:"multi_scale,omitempty"` // decimation bank instead of sliding windows

	// Standardization (fit on the training split only)
	Scale *bool `json:"scale,omitempty"`
}

// LoadPipelineConfig loads a PipelineConfig from a JSON file.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("pipeline config must have .json extension, got %q", ext)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline config: %w", err)
	}
	cfg := &PipelineConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse pipeline config: %w", err)
	}
	return cfg, nil
}

func (c *PipelineConfig) windowOffset() int {
	if c.WindowOffset != nil {
		return *c.WindowOffset
	}
	return DefaultWindowOffset
}

// Build assembles the configured pipeline. The default configuration is
// the standard chain: average electrodes, detrend against the pre-stimulus
// baseline, drop pre-stimulus data, reduce sliding windows to ensemble
// fingerprints, standardize.
func (c *PipelineConfig) Build() (*Pipeline, error) {
	offset := c.windowOffset()
	var stages []Stage

	combine := "avg"
	if c.ElectrodeCombine != nil {
		combine = *c.ElectrodeCombine
	}
	switch combine {
	case "avg":
		stages = append(stages, Stage{"electrode-avg", NewElectrodeAvg()})
	case "diff":
		stages = append(stages, Stage{"electrode-diff", NewElectrodeDiff()})
	case "none":
	default:
		return nil, fmt.Errorf("pipeline config: unknown electrode_combine %q", combine)
	}

	if c.Detrend == nil || *c.Detrend {
		dt, err := NewDetrend(offset)
		if err != nil {
			return nil, err
		}
		stages = append(stages, Stage{"detrend", dt})
	}

	if c.PreStimulus != nil && *c.PreStimulus {
		pre, err := NewPreStimulus(offset)
		if err != nil {
			return nil, err
		}
		stages = append(stages, Stage{"pre-stimulus", pre})
	} else {
		postOffset := 0
		if c.PostStimulusOffset != nil {
			postOffset = *c.PostStimulusOffset
		}
		post, err := NewPostStimulus(postOffset, offset)
		if err != nil {
			return nil, err
		}
		stages = append(stages, Stage{"post-stimulus", post})
	}

	if c.DecimationFactor != nil {
		dec, err := NewDecimate(*c.DecimationFactor)
		if err != nil {
			return nil, err
		}
		stages = append(stages, Stage{"decimate", dec})
	}
	if c.MovingAvgWidth != nil {
		avg, err := NewMovingAvg(*c.MovingAvgWidth)
		if err != nil {
			return nil, err
		}
		stages = append(stages, Stage{"moving-avg", avg})
	}
	if c.NoiseWidth != nil {
		noise, err := NewNoise(*c.NoiseWidth)
		if err != nil {
			return nil, err
		}
		stages = append(stages, Stage{"noise", noise})
	}
	if c.Wavelet != nil {
		level := 3
		if c.WaveletLevel != nil {
			level = *c.WaveletLevel
		}
		drop := 0
		if c.WaveletDrop != nil {
			drop = *c.WaveletDrop
		}
		wt, err := NewDiscreteWavelet(WaveletKind(*c.Wavelet), level, drop, true)
		if err != nil {
			return nil, err
		}
		stages = append(stages, Stage{"wavelet", wt})
	}

	if c.MultiScale != nil && *c.MultiScale {
		bank, err := NewDecimateWindow(EnsembleInner())
		if err != nil {
			return nil, err
		}
		stages = append(stages, Stage{"multi-scale-ensemble", bank})
	} else {
		count := 3
		if c.WindowCount != nil {
			count = *c.WindowCount
		}
		hann := false
		if c.Hann != nil {
			hann = *c.Hann
		}
		win, err := NewWindow(EnsembleInner(), count, hann)
		if err != nil {
			return nil, err
		}
		stages = append(stages, Stage{"window-ensemble", win})
	}

	if c.Scale == nil || *c.Scale {
		stages = append(stages, Stage{"scaler", NewStandardScaler()})
	}

	return NewPipeline(stages...)
}
