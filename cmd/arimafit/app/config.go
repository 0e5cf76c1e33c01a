package app

import (
	"errors"
	"flag"
	"fmt"
	"slices"

	"github.com/physiolab/vitals/internal/arima"
	"github.com/physiolab/vitals/internal/physio"
)

const defaultForecastSteps = 50

type Config struct {
	DataDirectory string
	Subject       string
	Session       string
	Channel       string
	Order         arima.Order
	ForecastSteps int
	OutputDir     string
}

func NewConfig() *Config {
	return &Config{
		Channel:       physio.ChannelHeartRate,
		Order:         arima.DefaultOrder,
		ForecastSteps: defaultForecastSteps,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	flag.StringVar(&c.DataDirectory, "data", "", "Directory containing <subject>.csv recordings")
	flag.StringVar(&c.Subject, "subject", "", "Subject ID to analyze")
	flag.StringVar(&c.Session, "session", "", "Restrict the fit to one session")
	flag.StringVar(&c.Channel, "channel", c.Channel, "Channel to fit. [eda, heart_rate, temperature]")
	flag.IntVar(&c.Order.P, "p", c.Order.P, "Autoregressive order")
	flag.IntVar(&c.Order.D, "d", c.Order.D, "Differencing order")
	flag.IntVar(&c.Order.Q, "q", c.Order.Q, "Moving average order")
	flag.IntVar(&c.ForecastSteps, "steps", c.ForecastSteps, "Number of forecast steps")
	flag.StringVar(&c.OutputDir, "o", "", "Directory for the diagnostic plots")
	flag.Parse()

	var err error
	if c.DataDirectory == "" {
		err = errors.New("data directory is required")
	} else if c.Subject == "" {
		err = errors.New("subject is required")
	} else if !slices.Contains(physio.Channels, c.Channel) {
		err = fmt.Errorf("invalid channel: %s", c.Channel)
	} else if c.Order.P < 0 || c.Order.D < 0 || c.Order.Q < 0 {
		err = fmt.Errorf("invalid model order %s", c.Order)
	} else if c.ForecastSteps <= 0 {
		err = fmt.Errorf("invalid forecast steps: %d", c.ForecastSteps)
	} else if c.OutputDir == "" {
		err = errors.New("output directory is required")
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}
	return c, nil
}
