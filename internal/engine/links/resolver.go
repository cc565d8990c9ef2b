package links

import (
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/tempo/internal/core/domain"
)

// Resolver maps link references to tasks. A reference is tried, in order, as
// a task id, as a WBS code and as a 1-based row number in the stable order.
type Resolver struct {
	order  []int
	byID   map[string]int
	byCode map[string]int
}

// NewResolver indexes tasks. The returned indices refer to the tasks slice.
func NewResolver(tasks []domain.Task) *Resolver {
	r := &Resolver{
		order:  StableOrder(tasks),
		byID:   make(map[string]int, len(tasks)),
		byCode: make(map[string]int, len(tasks)),
	}
	for i := range tasks {
		if _, dup := r.byID[tasks[i].ID]; !dup {
			r.byID[tasks[i].ID] = i
		}
	}
	for _, i := range r.order {
		code := tasks[i].Code
		if code == "" {
			continue
		}
		if _, dup := r.byCode[code]; !dup {
			r.byCode[code] = i
		}
	}
	return r
}

// Order returns the task indices in the stable (code, creation time) order.
func (r *Resolver) Order() []int {
	return r.order
}

// Resolve returns the index of the task ref points to.
// It reports false when no addressing scheme matches.
func (r *Resolver) Resolve(ref string) (int, bool) {
	if i, ok := r.byID[ref]; ok {
		return i, true
	}
	if i, ok := r.byCode[ref]; ok {
		return i, true
	}
	row, err := strconv.Atoi(ref)
	if err != nil || row < 1 || row > len(r.order) {
		return 0, false
	}
	return r.order[row-1], true
}

// StableOrder returns task indices sorted by code ascending, then creation
// time ascending. Tasks without a code sort last; ties keep their input order.
func StableOrder(tasks []domain.Task) []int {
	order := make([]int, len(tasks))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ta, tb := &tasks[a], &tasks[b]
		switch {
		case ta.Code == "" && tb.Code != "":
			return 1
		case ta.Code != "" && tb.Code == "":
			return -1
		}
		if c := strings.Compare(ta.Code, tb.Code); c != 0 {
			return c
		}
		return ta.CreatedAt.Compare(tb.CreatedAt)
	})
	return order
}
