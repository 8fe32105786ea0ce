package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/ward-overtime/pkg/core/calendar"
	"github.com/jakechorley/ward-overtime/pkg/core/model"
	"github.com/jakechorley/ward-overtime/pkg/core/stretch"
)

const configFileName = "overtime_config.yaml"

// Senior picker names
const (
	PickerFewest = "fewest"
	PickerRandom = "random"
)

// SheetsConfig points at the ward's spreadsheet
type SheetsConfig struct {
	CredentialsFile string `yaml:"credentialsFile" validate:"required"`
	SpreadsheetID   string `yaml:"spreadsheetID" validate:"required"`
	StaffTab        string `yaml:"staffTab" validate:"required"`

	// ScheduleTabLayout is the Go time layout naming each month's schedule tab, e.g. "2006-01" for "2025-03"
	ScheduleTabLayout string `yaml:"scheduleTabLayout,omitempty"`
}

// DayProfiles lists the shift types (names or letters) required on each kind of day.
// An omitted list keeps the default; an empty list means no slots.
type DayProfiles struct {
	Weekday  []string `yaml:"weekday,omitempty"`
	Saturday []string `yaml:"saturday,omitempty"`
	Sunday   []string `yaml:"sunday,omitempty"`
}

// DayOverride re-profiles the dates matched by an rrule
type DayOverride struct {
	RRule   string `yaml:"rrule" validate:"required"`
	Profile string `yaml:"profile" validate:"required,oneof=weekday saturday rest"`
}

// DefaultPerShift is the base score weight of one regular shift
const DefaultPerShift = 0.1

// BaseScoreConfig controls how base scores are derived from the month's regular shifts.
// An explicit perShift of 0 switches base scores off.
type BaseScoreConfig struct {
	RegularCodes []string `yaml:"regularCodes,omitempty"`
	PerShift     *float64 `yaml:"perShift,omitempty" validate:"omitempty,gte=0"`
}

// Weight returns the per-shift weight, or 0 when none is set
func (c BaseScoreConfig) Weight() float64 {
	if c.PerShift == nil {
		return 0
	}
	return *c.PerShift
}

// Config represents the application configuration
type Config struct {
	DatabaseURL         string          `yaml:"databaseURL" validate:"required"`
	Sheets              *SheetsConfig   `yaml:"sheets,omitempty"`
	DayProfiles         DayProfiles     `yaml:"dayProfiles,omitempty"`
	DayOverrides        []DayOverride   `yaml:"dayOverrides,omitempty" validate:"dive"`
	RestCodes           []string        `yaml:"restCodes,omitempty"`
	WorkStretchLimit    int             `yaml:"workStretchLimit" validate:"min=2"`
	CountLeadingStretch bool            `yaml:"countLeadingStretch"`
	BlankIsWork         bool            `yaml:"blankIsWork"`
	BaseScore           BaseScoreConfig `yaml:"baseScore"`
	SeniorPicker        string          `yaml:"seniorPicker" validate:"oneof=fewest random"`
	Seed                int64           `yaml:"seed"`
	MetricsFile         string          `yaml:"metricsFile,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from overtime_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile(configFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadWithEnv prefers overtime_config.<env>.yaml and falls back to overtime_config.yaml
func LoadWithEnv(env string) (*Config, error) {
	if env != "" {
		if configPath, err := findConfigFile(fmt.Sprintf("overtime_config.%s.yaml", env)); err == nil {
			return LoadFromPath(configPath)
		}
	}

	return Load()
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills every unset optional field
func (c *Config) ApplyDefaults() {
	if c.WorkStretchLimit == 0 {
		c.WorkStretchLimit = stretch.DefaultLimit
	}
	if len(c.RestCodes) == 0 {
		for _, code := range model.DefaultRestCodes {
			c.RestCodes = append(c.RestCodes, string(code))
		}
	}
	if len(c.BaseScore.RegularCodes) == 0 {
		c.BaseScore.RegularCodes = []string{"D"}
	}
	if c.BaseScore.PerShift == nil {
		perShift := DefaultPerShift
		c.BaseScore.PerShift = &perShift
	}
	if c.SeniorPicker == "" {
		c.SeniorPicker = PickerFewest
	}
	if c.Sheets != nil && c.Sheets.ScheduleTabLayout == "" {
		c.Sheets.ScheduleTabLayout = "2006-01"
	}
}

// Validate validates the configuration struct, the day profiles and the rrule syntax
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := cfg.Profiles(); err != nil {
		return err
	}

	// Validate rrule syntax for each override
	for i, override := range cfg.DayOverrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in dayOverrides[%d]: %w", i, err)
		}
	}

	return nil
}

// Profiles resolves the configured day profiles over the defaults
func (c *Config) Profiles() (calendar.Profiles, error) {
	profiles := calendar.DefaultProfiles()

	resolve := func(name string, values []string, target *[]model.ShiftType) error {
		if values == nil {
			return nil
		}
		slots, err := calendar.ParseSlots(values)
		if err != nil {
			return fmt.Errorf("invalid dayProfiles.%s: %w", name, err)
		}
		*target = slots
		return nil
	}

	if err := resolve("weekday", c.DayProfiles.Weekday, &profiles.Weekday); err != nil {
		return calendar.Profiles{}, err
	}
	if err := resolve("saturday", c.DayProfiles.Saturday, &profiles.Saturday); err != nil {
		return calendar.Profiles{}, err
	}
	if err := resolve("sunday", c.DayProfiles.Sunday, &profiles.Sunday); err != nil {
		return calendar.Profiles{}, err
	}

	return profiles, nil
}

// Overrides returns the configured day overrides in order
func (c *Config) Overrides() []calendar.Override {
	overrides := make([]calendar.Override, len(c.DayOverrides))
	for i, override := range c.DayOverrides {
		overrides[i] = calendar.Override{RRule: override.RRule, Profile: override.Profile}
	}
	return overrides
}

// StretchOptions returns the work stretch rule as configured
func (c *Config) StretchOptions() stretch.Options {
	restCodes := make([]model.ShiftCode, len(c.RestCodes))
	for i, code := range c.RestCodes {
		restCodes[i] = model.ShiftCode(code)
	}

	return stretch.Options{
		RestCodes:           restCodes,
		Limit:               c.WorkStretchLimit,
		CountLeadingStretch: c.CountLeadingStretch,
		BlankIsWork:         c.BlankIsWork,
	}
}

// findConfigFile searches for the named file in current directory and home directory
func findConfigFile(name string) (string, error) {
	// Check current directory
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
