package deviceclient

import (
	"errors"
	"fmt"
	"os"

	"noise_monitor/internal/models"

	"gopkg.in/yaml.v3"
)

// Profile is a YAML fleet description: each device gets one reading per round.
//
//	devices:
//	  - id: sensor-101
//	    battery: 88
//	    metadata:
//	      property_name: Harbour View
//	      room_number: "402"
//	    thresholds:
//	      night: {max: 45}
type Profile struct {
	Devices []DeviceProfile `yaml:"devices"`
}

type DeviceProfile struct {
	ID          string           `yaml:"id"`
	Battery     *float64         `yaml:"battery"`
	Temperature *float64         `yaml:"temperature"`
	Humidity    *float64         `yaml:"humidity"`
	Status      string           `yaml:"status"`
	Metadata    *MetadataProfile `yaml:"metadata"`
	Thresholds  *struct {
		Normal  *RangeProfile `yaml:"normal"`
		Night   *RangeProfile `yaml:"night"`
		Holiday *RangeProfile `yaml:"holiday"`
	} `yaml:"thresholds"`
}

type MetadataProfile struct {
	PropertyID   *string  `yaml:"property_id"`
	PropertyName *string  `yaml:"property_name"`
	RoomNumber   *string  `yaml:"room_number"`
	Location     *string  `yaml:"location"`
	Floor        *float64 `yaml:"floor"`
	Notes        *string  `yaml:"notes"`
}

type RangeProfile struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

// LoadProfile reads and validates a profile file.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return &p, nil
}

func (p *Profile) validate() error {
	if len(p.Devices) == 0 {
		return errors.New("no devices defined")
	}
	seen := make(map[string]struct{}, len(p.Devices))
	for i, d := range p.Devices {
		if d.ID == "" {
			return fmt.Errorf("device %d: id is required", i)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("device %q defined twice", d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}

// Sample converts the profile entry into a sample. The noise level is
// always random.
func (d DeviceProfile) Sample() Sample {
	s := Sample{
		DeviceID:    d.ID,
		Battery:     d.Battery,
		Temperature: d.Temperature,
		Humidity:    d.Humidity,
		Status:      d.Status,
	}
	if m := d.Metadata; m != nil {
		s.Metadata = &models.ReadingMetadata{
			PropertyID:   m.PropertyID,
			PropertyName: m.PropertyName,
			RoomNumber:   m.RoomNumber,
			Location:     m.Location,
			Floor:        m.Floor,
			Notes:        m.Notes,
		}
	}
	if t := d.Thresholds; t != nil {
		s.Thresholds = &models.ReadingThresholds{
			Normal:  t.Normal.toRange(),
			Night:   t.Night.toRange(),
			Holiday: t.Holiday.toRange(),
		}
	}
	return s
}

func (r *RangeProfile) toRange() *models.Range {
	if r == nil {
		return nil
	}
	return &models.Range{Min: r.Min, Max: r.Max}
}
