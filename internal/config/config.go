package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/kjstillabower/citypage-weather/internal/validation"
)

const (
	DefaultBaseURL   = "https://dd.weather.gc.ca/citypage_weather/xml"
	DefaultProvince  = "qc"
	DefaultStationID = "s0000635"
	DefaultLanguage  = "english"
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "citypage-weather"
)

var ErrConflictingFlags = errors.New("conflicting flags")

// Mode selects what a run prints.
type Mode int

const (
	ModeJSON Mode = iota
	ModeTemperature
	ModeRelativeHumidity
)

func (m Mode) String() string {
	switch m {
	case ModeTemperature:
		return "temperature"
	case ModeRelativeHumidity:
		return "relative_humidity"
	default:
		return "json"
	}
}

// Config is the resolved configuration for one run. Build it once with Load
// and pass it down; nothing reads flags or env after that.
type Config struct {
	URL             string
	Mode            Mode
	Timeout         time.Duration
	UserAgent       string
	MetricsTextfile string
	ShowVersion     bool
}

type fileConfig struct {
	Source struct {
		BaseURL   string `yaml:"base_url"`
		Timeout   string `yaml:"timeout"`
		UserAgent string `yaml:"user_agent"`
	} `yaml:"source"`

	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

// flagValues holds raw command-line values before validation.
type flagValues struct {
	url                  string
	temperatureOnly      bool
	relativeHumidityOnly bool
	province             string
	stationID            string
	language             string
	configPath           string
	version              bool
	set                  map[string]bool
}

// Load parses args (without the program name), loads .env and the optional
// YAML settings file, applies CITYPAGE_* env overrides, and resolves the source URL.
// Usage and flag errors are written to output. Returns flag.ErrHelp for -h.
func Load(args []string, output io.Writer) (*Config, error) {
	_ = godotenv.Load()

	fv, err := parseFlags(args, output)
	if err != nil {
		return nil, err
	}
	cfg := &Config{ShowVersion: fv.version}
	if fv.version {
		return cfg, nil
	}

	fc, err := readFileConfig(fv.configPath)
	if err != nil {
		return nil, err
	}

	baseURL := firstNonEmpty(os.Getenv("CITYPAGE_BASE_URL"), fc.Source.BaseURL, DefaultBaseURL)
	cfg.Timeout = parseDuration(firstNonEmpty(os.Getenv("CITYPAGE_TIMEOUT"), fc.Source.Timeout), DefaultTimeout)
	cfg.UserAgent = firstNonEmpty(fc.Source.UserAgent, DefaultUserAgent)
	cfg.MetricsTextfile = strings.TrimSpace(firstNonEmpty(os.Getenv("CITYPAGE_METRICS_TEXTFILE"), fc.Metrics.Textfile))

	if err := fv.validate(); err != nil {
		return nil, err
	}

	switch {
	case fv.temperatureOnly:
		cfg.Mode = ModeTemperature
	case fv.relativeHumidityOnly:
		cfg.Mode = ModeRelativeHumidity
	default:
		cfg.Mode = ModeJSON
	}

	if fv.set["url"] {
		cfg.URL = strings.TrimSpace(fv.url)
		return cfg, nil
	}
	cfg.URL, err = SourceURL(baseURL, fv.province, fv.stationID, fv.language)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseFlags(args []string, output io.Writer) (*flagValues, error) {
	fv := &flagValues{set: make(map[string]bool)}
	fs := flag.NewFlagSet("citypage", flag.ContinueOnError)
	fs.SetOutput(output)

	// Each option has a long and a one-letter name bound to the same variable.
	aliases := map[string]string{"u": "url", "t": "temperature-only", "r": "relative-humidity-only", "p": "province", "s": "station-id", "l": "language"}
	fs.StringVar(&fv.url, "url", "", "full URL of the XML document (overrides province, station-id and language)")
	fs.StringVar(&fv.url, "u", "", "shorthand for -url")
	fs.BoolVar(&fv.temperatureOnly, "temperature-only", false, "print only the temperature")
	fs.BoolVar(&fv.temperatureOnly, "t", false, "shorthand for -temperature-only")
	fs.BoolVar(&fv.relativeHumidityOnly, "relative-humidity-only", false, "print only the relative humidity")
	fs.BoolVar(&fv.relativeHumidityOnly, "r", false, "shorthand for -relative-humidity-only")
	fs.StringVar(&fv.province, "province", DefaultProvince, "province of the station ("+strings.ToLower(strings.Join(validation.Provinces, ", "))+")")
	fs.StringVar(&fv.province, "p", DefaultProvince, "shorthand for -province")
	fs.StringVar(&fv.stationID, "station-id", DefaultStationID, "station id, see https://dd.weather.gc.ca/citypage_weather/xml/siteList.xml")
	fs.StringVar(&fv.stationID, "s", DefaultStationID, "shorthand for -station-id")
	fs.StringVar(&fv.language, "language", DefaultLanguage, "language of text in the document (english, french)")
	fs.StringVar(&fv.language, "l", DefaultLanguage, "shorthand for -language")
	fs.StringVar(&fv.configPath, "config", os.Getenv("CITYPAGE_CONFIG"), "path to YAML settings file")
	fs.BoolVar(&fv.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := aliases[name]; ok {
			name = long
		}
		fv.set[name] = true
	})
	return fv, nil
}

// validate collects every flag problem instead of stopping at the first.
func (fv *flagValues) validate() error {
	var err error
	if fv.temperatureOnly && fv.relativeHumidityOnly {
		err = multierr.Append(err, fmt.Errorf("%w: -temperature-only and -relative-humidity-only", ErrConflictingFlags))
	}
	if fv.set["url"] {
		for _, name := range []string{"province", "station-id", "language"} {
			if fv.set[name] {
				err = multierr.Append(err, fmt.Errorf("%w: -url and -%s", ErrConflictingFlags, name))
			}
		}
		if strings.TrimSpace(fv.url) == "" {
			err = multierr.Append(err, errors.New("-url must not be empty"))
		}
		return err
	}
	if _, perr := validation.ValidateProvince(fv.province); perr != nil {
		err = multierr.Append(err, perr)
	}
	if _, serr := validation.ValidateStationID(fv.stationID); serr != nil {
		err = multierr.Append(err, serr)
	}
	if _, lerr := validation.LanguageCode(fv.language); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	return err
}

// SourceURL builds <base>/<PROVINCE>/<station>_<e|f>.xml.
func SourceURL(baseURL, province, stationID, language string) (string, error) {
	p, err := validation.ValidateProvince(province)
	if err != nil {
		return "", err
	}
	s, err := validation.ValidateStationID(stationID)
	if err != nil {
		return "", err
	}
	l, err := validation.LanguageCode(language)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s_%s.xml", strings.TrimRight(baseURL, "/"), p, s, l), nil
}

func readFileConfig(path string) (*fileConfig, error) {
	var fc fileConfig
	path = strings.TrimSpace(path)
	if path == "" {
		return &fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &fc, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
