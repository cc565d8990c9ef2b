package yamlfile

import (
	"time"

	"go.trai.ch/tempo/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// ProjectFile represents the structure of a tempo.yaml project file.
type ProjectFile struct {
	ID       string      `yaml:"id"       validate:"required"`
	Name     string      `yaml:"name"`
	Calendar CalendarDTO `yaml:"calendar"`
	Tasks    []*TaskDTO  `yaml:"tasks"    validate:"dive,required"`
}

// CalendarDTO represents the calendar section of a project file.
type CalendarDTO struct {
	Mode            string       `yaml:"mode"               validate:"omitempty,oneof=business_days running_days"`
	WorkHoursPerDay float64      `yaml:"work_hours_per_day" validate:"gte=0,lte=24"`
	Holidays        []HolidayDTO `yaml:"holidays"`
}

// HolidayDTO represents one holiday entry.
type HolidayDTO struct {
	Date      domain.Date `yaml:"date"`
	Recurring bool        `yaml:"recurring"`
}

// TaskDTO represents one task of a project file.
type TaskDTO struct {
	ID           string       `yaml:"id"            validate:"required"`
	Code         string       `yaml:"code"`
	Name         string       `yaml:"name"`
	Duration     float64      `yaml:"duration"`
	PlannedStart *domain.Date `yaml:"planned_start"`
	PlannedEnd   *domain.Date `yaml:"planned_end"`
	CreatedAt    time.Time    `yaml:"created_at"`
	Weight       *float64     `yaml:"weight"`
	Status       string       `yaml:"status"`
	Metadata     MetadataDTO  `yaml:"metadata"`
}

// MetadataDTO represents the free-form metadata of a task.
type MetadataDTO struct {
	Progress     Progress `yaml:"progress"`
	Predecessors string   `yaml:"predecessors"`
}

// Progress is a progress value that accepts numbers as well as strings such
// as "45%" or "0,5". Values that cannot be read are treated as absent.
type Progress struct {
	Value *float64
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Progress) UnmarshalYAML(node *yaml.Node) error {
	p.Value = nil
	if node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return nil
	}

	var raw any = node.Value
	if node.Tag == "!!int" || node.Tag == "!!float" {
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil //nolint:nilerr // unreadable progress counts as absent
		}
		raw = f
	}

	if v, ok := domain.ParseProgress(raw); ok {
		p.Value = &v
	}
	return nil
}
