package yamlfile

import (
	"strconv"

	"go.trai.ch/tempo/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	tagStr       = "!!str"
	tagInt       = "!!int"
	tagFloat     = "!!float"
	tagTimestamp = "!!timestamp"
)

// taskNodes indexes the mapping nodes of the tasks sequence by task id.
func taskNodes(doc *yaml.Node) (map[string]*yaml.Node, error) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, zerr.Wrap(domain.ErrInvalidProject, domain.ErrConfigParseFailed.Error())
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, zerr.Wrap(domain.ErrInvalidProject, domain.ErrConfigParseFailed.Error())
	}

	tasks := lookup(root, "tasks")
	out := make(map[string]*yaml.Node)
	if tasks == nil || tasks.Kind != yaml.SequenceNode {
		return out, nil
	}
	for _, item := range tasks.Content {
		if item.Kind != yaml.MappingNode {
			continue
		}
		if id := lookup(item, "id"); id != nil && id.Kind == yaml.ScalarNode {
			out[id.Value] = item
		}
	}
	return out, nil
}

func applySchedule(task *yaml.Node, d domain.ScheduleDelta) {
	setScalar(task, "planned_start", d.NewStart.String(), tagTimestamp)
	setScalar(task, "planned_end", d.NewEnd.String(), tagTimestamp)
	setScalar(task, "duration", strconv.Itoa(d.NewDuration), tagInt)
}

func applyProgress(task *yaml.Node, d domain.ProgressDelta) {
	meta := lookup(task, "metadata")
	if meta == nil || meta.Kind != yaml.MappingNode {
		meta = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		setValue(task, "metadata", meta)
	}
	value, tag := formatProgress(d.NewProgress)
	setScalar(meta, "progress", value, tag)
	if d.NewStatus != nil {
		setScalar(task, "status", *d.NewStatus, tagStr)
	}
}

// formatProgress renders a fraction without trailing zeros and returns the
// matching scalar tag.
func formatProgress(v float64) (string, string) {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10), tagInt
	}
	return strconv.FormatFloat(v, 'f', -1, 64), tagFloat
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func setScalar(mapping *yaml.Node, key, value, tag string) {
	if existing := lookup(mapping, key); existing != nil && existing.Kind == yaml.ScalarNode {
		existing.Value = value
		existing.Tag = tag
		existing.Style = 0
		return
	}
	setValue(mapping, key, &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value})
}

func setValue(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: tagStr, Value: key},
		value,
	)
}
