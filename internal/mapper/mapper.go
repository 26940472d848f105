package mapper

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/kjstillabower/citypage-weather/internal/models"
)

const conditionsElement = "currentConditions"

// xmlDocument is the citypage root (siteData). Everything but current conditions is ignored.
type xmlDocument struct {
	CurrentConditions *xmlConditions `xml:"currentConditions"`
}

type xmlConditions struct {
	Temperature      *xmlMeasurement `xml:"temperature"`
	Dewpoint         *xmlMeasurement `xml:"dewpoint"`
	Humidex          *xmlMeasurement `xml:"humidex"`
	Pressure         *xmlMeasurement `xml:"pressure"`
	Visibility       *xmlMeasurement `xml:"visibility"`
	WindChill        *xmlMeasurement `xml:"windChill"`
	RelativeHumidity *xmlMeasurement `xml:"relativeHumidity"`
	Wind             *xmlWind        `xml:"wind"`
	DateTimes        []xmlDateTime   `xml:"dateTime"`
}

// xmlMeasurement holds the reading in its text node; a value attribute is
// accepted when the text is empty.
type xmlMeasurement struct {
	UnitType *string `xml:"unitType,attr"`
	Units    *string `xml:"units,attr"`
	ValueAtt *string `xml:"value,attr"`
	Text     string  `xml:",chardata"`
}

type xmlWind struct {
	Speed     *xmlMeasurement `xml:"speed"`
	Gust      *xmlMeasurement `xml:"gust"`
	Direction *string         `xml:"direction"`
	Bearing   *xmlMeasurement `xml:"bearing"`
}

type xmlDateTime struct {
	UTCOffset *string `xml:"UTCOffset,attr"`
	Zone      string  `xml:"zone,attr"`
	Year      *string `xml:"year"`
	Month     *string `xml:"month"`
	Day       *string `xml:"day"`
	Hour      *string `xml:"hour"`
	Minute    *string `xml:"minute"`
}

// Parse maps a citypage XML document and returns its current conditions.
func Parse(data []byte) (models.CurrentConditions, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return models.CurrentConditions{}, err
	}
	return doc.CurrentConditions, nil
}

// ParseDocument maps a citypage XML document. The document root is either
// siteData containing currentConditions, or currentConditions itself. When
// several dateTime records are present the last one in document order sets
// the timestamp; the records themselves are dropped.
func ParseDocument(data []byte) (models.WeatherDocument, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	root, err := rootElement(dec)
	if err != nil {
		return models.WeatherDocument{}, malformed(err)
	}

	var raw xmlConditions
	if root.Name.Local == conditionsElement {
		if err := dec.DecodeElement(&raw, &root); err != nil {
			return models.WeatherDocument{}, malformed(err)
		}
	} else {
		var doc xmlDocument
		if err := dec.DecodeElement(&doc, &root); err != nil {
			return models.WeatherDocument{}, malformed(err)
		}
		if doc.CurrentConditions == nil {
			return models.WeatherDocument{}, malformed(fmt.Errorf("no <%s> element under <%s>", conditionsElement, root.Name.Local))
		}
		raw = *doc.CurrentConditions
	}
	if err := drain(dec); err != nil {
		return models.WeatherDocument{}, malformed(err)
	}

	cc := models.CurrentConditions{
		Temperature:      raw.Temperature.normalize(),
		Dewpoint:         raw.Dewpoint.normalize(),
		Humidex:          raw.Humidex.normalize(),
		Pressure:         raw.Pressure.normalize(),
		Visibility:       raw.Visibility.normalize(),
		WindChill:        raw.WindChill.normalize(),
		RelativeHumidity: raw.RelativeHumidity.normalize(),
		Wind:             raw.Wind.normalize(),
	}

	ts, err := deriveTimestamp(raw.DateTimes)
	if err != nil {
		return models.WeatherDocument{}, err
	}
	cc.Timestamp = ts
	return models.WeatherDocument{CurrentConditions: cc}, nil
}

func rootElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, errors.New("empty document")
		}
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

// drain reads whatever follows the root so syntax errors there are reported.
func drain(dec *xml.Decoder) error {
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (m *xmlMeasurement) normalize() *models.Measurement {
	if m == nil {
		return nil
	}
	out := &models.Measurement{
		UnitType: nonEmpty(m.UnitType),
		Units:    nonEmpty(m.Units),
	}
	slot := strings.TrimSpace(m.Text)
	if slot == "" && m.ValueAtt != nil {
		slot = strings.TrimSpace(*m.ValueAtt)
	}
	if slot != "" {
		v := models.ParseValue(slot)
		out.Value = &v
	}
	return out
}

func (w *xmlWind) normalize() *models.Wind {
	if w == nil {
		return nil
	}
	return &models.Wind{
		Speed:     w.Speed.normalize(),
		Gust:      w.Gust.normalize(),
		Direction: nonEmpty(w.Direction),
		Bearing:   w.Bearing.normalize(),
	}
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// deriveTimestamp converts every record and keeps the last one. Records are
// expected to name the same instant in different zones; that is not checked.
func deriveTimestamp(records []xmlDateTime) (*time.Time, error) {
	var ts *time.Time
	for i, r := range records {
		t, err := r.instant()
		if err != nil {
			return nil, fmt.Errorf("dateTime[%d]: %w", i, err)
		}
		ts = &t
	}
	return ts, nil
}

func (d xmlDateTime) instant() (time.Time, error) {
	offset, err := intField("UTCOffset", d.UTCOffset)
	if err != nil {
		return time.Time{}, err
	}
	year, err := intField("year", d.Year)
	if err != nil {
		return time.Time{}, err
	}
	month, err := intField("month", d.Month)
	if err != nil {
		return time.Time{}, err
	}
	day, err := intField("day", d.Day)
	if err != nil {
		return time.Time{}, err
	}
	hour, err := intField("hour", d.Hour)
	if err != nil {
		return time.Time{}, err
	}
	minute, err := intField("minute", d.Minute)
	if err != nil {
		return time.Time{}, err
	}

	// time.Date normalizes out-of-range fields, so range checks come first.
	switch {
	case year < 0 || year > 9999:
		return time.Time{}, invalidTimestamp(fmt.Errorf("year %d out of range", year))
	case offset < -23 || offset > 23:
		return time.Time{}, invalidTimestamp(fmt.Errorf("UTCOffset %d out of range", offset))
	case month < 1 || month > 12:
		return time.Time{}, invalidTimestamp(fmt.Errorf("month %d out of range", month))
	case day < 1 || day > daysIn(year, time.Month(month)):
		return time.Time{}, invalidTimestamp(fmt.Errorf("day %d out of range for %04d-%02d", day, year, month))
	case hour < 0 || hour > 23:
		return time.Time{}, invalidTimestamp(fmt.Errorf("hour %d out of range", hour))
	case minute < 0 || minute > 59:
		return time.Time{}, invalidTimestamp(fmt.Errorf("minute %d out of range", minute))
	}

	loc := time.FixedZone(d.Zone, offset*60*60)
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc).UTC(), nil
}

func intField(name string, s *string) (int, error) {
	if s == nil {
		return 0, malformed(fmt.Errorf("dateTime: missing %s", name))
	}
	n, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil {
		return 0, malformed(fmt.Errorf("dateTime: %s %q is not an integer", name, *s))
	}
	return n, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
