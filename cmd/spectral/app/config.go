package app

import (
	"errors"
	"flag"
	"fmt"
	"slices"

	"github.com/physiolab/vitals/internal/features"
	"github.com/physiolab/vitals/internal/physio"
)

type Config struct {
	DataDirectory string
	Subject       string
	Session       string
	Channel       string
	SampleRate    float64
	WindowSeconds float64
	OutputDir     string
	PlotFile      string
	Welch         bool
	Wavelet       bool
}

func NewConfig() *Config {
	return &Config{
		Channel:       physio.ChannelHeartRate,
		SampleRate:    features.NominalSampleRate,
		WindowSeconds: features.DefaultWindowSeconds,
		Welch:         true,
		Wavelet:       true,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	flag.StringVar(&c.DataDirectory, "data", "", "Directory containing <subject>.csv recordings")
	flag.StringVar(&c.Subject, "subject", "", "Subject ID to analyze")
	flag.StringVar(&c.Session, "session", "", "Restrict the analysis to one session")
	flag.StringVar(&c.Channel, "channel", c.Channel, "Channel to analyze. [eda, heart_rate, temperature]")
	flag.Float64Var(&c.SampleRate, "rate", c.SampleRate, "Sampling rate in Hz")
	flag.Float64Var(&c.WindowSeconds, "window", c.WindowSeconds, "Block length in seconds")
	flag.StringVar(&c.OutputDir, "o", "", "Directory for the output archives")
	flag.StringVar(&c.PlotFile, "plot", "", "Optional path for an averaged PSD plot image")
	flag.BoolVar(&c.Welch, "welch", c.Welch, "Run the Welch band power analysis")
	flag.BoolVar(&c.Wavelet, "wavelet", c.Wavelet, "Run the Morlet wavelet analysis")
	flag.Parse()

	var err error
	if c.DataDirectory == "" {
		err = errors.New("data directory is required")
	} else if c.Subject == "" {
		err = errors.New("subject is required")
	} else if !slices.Contains(physio.Channels, c.Channel) {
		err = fmt.Errorf("invalid channel: %s", c.Channel)
	} else if c.SampleRate <= 0 {
		err = fmt.Errorf("invalid sampling rate: %g Hz", c.SampleRate)
	} else if c.WindowSeconds <= 0 {
		err = fmt.Errorf("invalid block length: %g seconds", c.WindowSeconds)
	} else if c.OutputDir == "" {
		err = errors.New("output directory is required")
	} else if !c.Welch && !c.Wavelet {
		err = errors.New("at least one analysis must be enabled")
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}
	return c, nil
}
