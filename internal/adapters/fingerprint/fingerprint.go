// Package fingerprint digests project snapshots with XXHash.
package fingerprint

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/tempo/internal/core/ports"
)

var _ ports.Fingerprinter = (*Hasher)(nil)

// Hasher computes fingerprints of project snapshots.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint hashes every field of the project the engine reads, in task
// order, followed by the extra values. Names are included because reports
// show them.
func (h *Hasher) Fingerprint(project *domain.Project, extra ...string) (string, error) {
	if project == nil {
		return "", domain.ErrNilProject
	}

	d := xxhash.New()
	h.hashCalendar(d, project.Calendar)
	for i := range project.Tasks {
		h.hashTask(d, &project.Tasks[i])
	}
	_, _ = d.Write([]byte{0}) // Section separator

	writeString(d, project.ID)
	for _, e := range extra {
		writeString(d, e)
	}

	return fmt.Sprintf("%016x", d.Sum64()), nil
}

func (h *Hasher) hashCalendar(d *xxhash.Digest, cal domain.Calendar) {
	writeString(d, string(cal.Mode))
	writeFloat(d, &cal.WorkHoursPerDay)
	for _, hol := range cal.Holidays {
		writeString(d, hol.Date.String())
		writeString(d, strconv.FormatBool(hol.Recurring))
	}
	_, _ = d.Write([]byte{0})
}

func (h *Hasher) hashTask(d *xxhash.Digest, t *domain.Task) {
	writeString(d, t.ID)
	writeString(d, t.Code)
	writeString(d, t.Name)
	writeFloat(d, &t.Duration)
	writeDate(d, t.PlannedStart)
	writeDate(d, t.PlannedEnd)
	writeString(d, t.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z"))
	writeFloat(d, t.Weight)
	writeFloat(d, t.Metadata.Progress)
	writeString(d, t.Metadata.Predecessors)
	writeString(d, t.Status)
	_, _ = d.Write([]byte{0})
}

func writeString(d *xxhash.Digest, s string) {
	_, _ = d.WriteString(s)
	_, _ = d.Write([]byte{0})
}

func writeDate(d *xxhash.Digest, date *domain.Date) {
	if date == nil {
		writeString(d, "-")
		return
	}
	writeString(d, date.String())
}

func writeFloat(d *xxhash.Digest, v *float64) {
	if v == nil {
		writeString(d, "-")
		return
	}
	writeString(d, strconv.FormatUint(math.Float64bits(*v), 16))
}
