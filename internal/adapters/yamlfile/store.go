// Package yamlfile stores projects as YAML files.
package yamlfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ProjectStore = (*Store)(nil)

// Store implements ports.ProjectStore for project files. References are
// file paths.
type Store struct {
	validate *validator.Validate
}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{validate: validator.New()}
}

// Load reads, validates and converts the project file at path.
func (s *Store) Load(path string) (*domain.Project, error) {
	file, info, err := s.read(path)
	if err != nil {
		return nil, err
	}

	if err := s.validate.Struct(file); err != nil {
		return nil, zerr.With(describeValidation(err), "path", path)
	}

	project := &domain.Project{
		ID:   file.ID,
		Name: file.Name,
		Calendar: domain.Calendar{
			Mode:            domain.ParseCalendarMode(file.Calendar.Mode),
			WorkHoursPerDay: file.Calendar.WorkHoursPerDay,
		},
		Tasks: make([]domain.Task, 0, len(file.Tasks)),
	}
	if project.Calendar.WorkHoursPerDay == 0 {
		project.Calendar.WorkHoursPerDay = domain.DefaultWorkHoursPerDay
	}
	for _, h := range file.Calendar.Holidays {
		if h.Date.IsZero() {
			continue
		}
		project.Calendar.Holidays = append(project.Calendar.Holidays, domain.Holiday{Date: h.Date, Recurring: h.Recurring})
	}

	seen := make(map[string]bool, len(file.Tasks))
	for _, dto := range file.Tasks {
		if seen[dto.ID] {
			return nil, zerr.With(zerr.With(domain.ErrDuplicateTaskID, "task_id", dto.ID), "path", path)
		}
		seen[dto.ID] = true

		task := domain.Task{
			ID:           dto.ID,
			Code:         dto.Code,
			Name:         dto.Name,
			Duration:     dto.Duration,
			PlannedStart: dto.PlannedStart,
			PlannedEnd:   dto.PlannedEnd,
			CreatedAt:    dto.CreatedAt,
			Weight:       dto.Weight,
			Status:       dto.Status,
			Metadata: domain.Metadata{
				Progress:     dto.Metadata.Progress.Value,
				Predecessors: dto.Metadata.Predecessors,
			},
		}
		if task.CreatedAt.IsZero() {
			task.CreatedAt = defaultCreatedAt(dto, info)
		}
		project.Tasks = append(project.Tasks, task)
	}

	return project, nil
}

// Apply writes the deltas of result into the file at path. Only the changed
// fields are touched; comments and unrelated keys are preserved.
func (s *Store) Apply(path string, result *domain.Result) error {
	if result == nil || result.Empty() {
		return nil
	}

	//nolint:gosec // Path is a project file chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrProjectWriteFailed.Error()), "path", path)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}

	tasks, err := taskNodes(&doc)
	if err != nil {
		return zerr.With(err, "path", path)
	}

	for _, d := range result.Schedule {
		node, ok := tasks[d.TaskID]
		if !ok {
			return zerr.With(zerr.With(domain.ErrProjectWriteFailed, "task_id", d.TaskID), "path", path)
		}
		applySchedule(node, d)
	}
	for _, d := range result.Progress {
		node, ok := tasks[d.TaskID]
		if !ok {
			return zerr.With(zerr.With(domain.ErrProjectWriteFailed, "task_id", d.TaskID), "path", path)
		}
		applyProgress(node, d)
	}

	return writeDocument(path, &doc)
}

func (s *Store) read(path string) (*ProjectFile, os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, zerr.With(domain.ErrProjectNotFound, "path", path)
		}
		return nil, nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	//nolint:gosec // Path is a project file chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}

	var file ProjectFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "path", path)
	}
	return &file, info, nil
}

// defaultCreatedAt picks the creation time of a task that has none: its
// planned start, or the modification time of the file.
func defaultCreatedAt(dto *TaskDTO, info os.FileInfo) time.Time {
	if dto.PlannedStart != nil && !dto.PlannedStart.IsZero() {
		return dto.PlannedStart.Time()
	}
	return info.ModTime().UTC()
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return zerr.Wrap(err, domain.ErrInvalidProject.Error())
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return zerr.With(domain.ErrInvalidProject, "problems", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "ProjectFile.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func writeDocument(path string, doc *yaml.Node) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrProjectWriteFailed.Error()), "path", path)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	enc := yaml.NewEncoder(tmp)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrProjectWriteFailed.Error()), "path", path)
	}
	if err := enc.Close(); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, domain.ErrProjectWriteFailed.Error()), "path", path)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrProjectWriteFailed.Error()), "path", path)
	}

	mode := os.FileMode(domain.FilePerm)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrProjectWriteFailed.Error()), "path", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrProjectWriteFailed.Error()), "path", path)
	}
	return nil
}
