package domain

// Project is the snapshot a recalculation runs against: one calendar and
// the project's tasks in their stored order.
type Project struct {
	ID       string
	Name     string
	Calendar Calendar
	Tasks    []Task
}

// TaskByID returns the task with the given id.
func (p *Project) TaskByID(id string) (*Task, bool) {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i], true
		}
	}
	return nil, false
}
