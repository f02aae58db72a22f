package weather

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const DefaultSnowThreshold = 6.0

var (
	ErrNoAPIKey        = errors.New("weather api key is not configured")
	ErrAlertsDisabled  = errors.New("weather alerts are disabled")
	ErrNoReport        = errors.New("no weather report available")
	ErrNoSettings      = errors.New("weather settings have never been saved")
	ErrBudgetExhausted = errors.New("daily forecast call budget exhausted")
	ErrInvalidSettings = errors.New("invalid weather settings")
)

var validate = validator.New()

// Settings is the single weather configuration shared by every skier. The
// last writer wins.
type Settings struct {
	APIKey           string   `json:"apiKey"`
	EnableAlerts     bool     `json:"enableAlerts"`
	SnowThreshold    float64  `json:"snowThreshold" validate:"gt=0"`
	MonitoredResorts []string `json:"monitoredResorts" validate:"dive,required"`
}

// DefaultSettings enables alerts at a 6" threshold for every catalog resort.
func DefaultSettings(c Catalog) Settings {
	return Settings{
		EnableAlerts:     true,
		SnowThreshold:    DefaultSnowThreshold,
		MonitoredResorts: c.Names(),
	}
}

func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}
