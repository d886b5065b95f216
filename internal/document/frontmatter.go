package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/metis/internal/errors"
)

const frontmatterDelimiter = "---"

// SplitFrontmatter splits raw file content into the YAML frontmatter block
// and the markdown body. The frontmatter must be a leading fenced block.
func SplitFrontmatter(content string) (frontmatter, body string, err error) {
	if !strings.HasPrefix(content, frontmatterDelimiter+"\n") {
		return "", "", errors.ErrMissingField("frontmatter")
	}
	rest := content[len(frontmatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	if end < 0 {
		return "", "", errors.ErrInvalidContent("unterminated frontmatter block")
	}
	frontmatter = rest[:end+1]
	body = rest[end+1+len(frontmatterDelimiter):]
	// Close the delimiter line, then swallow the conventional blank line
	// separating frontmatter from body.
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimPrefix(body, "\n")
	return frontmatter, body, nil
}

// rawFrontmatter mirrors the YAML frontmatter schema across all variants.
type rawFrontmatter struct {
	ID              string   `yaml:"id"`
	Level           string   `yaml:"level"`
	Title           string   `yaml:"title"`
	ShortCode       string   `yaml:"short_code"`
	CreatedAt       string   `yaml:"created_at"`
	UpdatedAt       string   `yaml:"updated_at"`
	Archived        bool     `yaml:"archived"`
	Parent          string   `yaml:"parent"`
	BlockedBy       []string `yaml:"blocked_by"`
	Tags            []string `yaml:"tags"`
	ExitCriteriaMet bool     `yaml:"exit_criteria_met"`

	// Strategy / Vision
	RiskLevel      string   `yaml:"risk_level"`
	Stakeholders   []string `yaml:"stakeholders"`
	SuccessMetrics []string `yaml:"success_metrics"`

	// Initiative
	Complexity    string `yaml:"complexity"`
	TechnicalLead string `yaml:"technical_lead"`

	// ADR
	Number        uint32 `yaml:"number"`
	DecisionMaker string `yaml:"decision_maker"`
	DecisionDate  string `yaml:"decision_date"`
}

// requiredFields are the frontmatter keys every variant must carry.
var requiredFields = []string{"id", "title", "short_code", "created_at", "updated_at", "tags"}

// parseFrontmatter decodes a YAML frontmatter block into the raw schema,
// checking required keys by presence so that an empty value and a missing
// key report differently.
func parseFrontmatter(block string) (*rawFrontmatter, error) {
	var present map[string]any
	if err := yaml.Unmarshal([]byte(block), &present); err != nil {
		return nil, errors.ErrInvalidContent("frontmatter is not valid YAML").WithCause(err)
	}
	for _, key := range requiredFields {
		if _, ok := present[key]; !ok {
			return nil, errors.ErrMissingField(key)
		}
	}

	var raw rawFrontmatter
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return nil, errors.ErrInvalidContent("frontmatter does not match schema").WithCause(err)
	}
	return &raw, nil
}

// parseTimestamp parses an RFC3339 frontmatter timestamp.
func parseTimestamp(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.ErrInvalidContent(fmt.Sprintf("invalid %s timestamp %q", field, value))
	}
	return t.UTC(), nil
}

// emitFrontmatter serializes a document's frontmatter with a fixed key
// order per variant, so unchanged documents round-trip byte-identically.
func emitFrontmatter(d *Document) (string, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, value *yaml.Node) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	}

	add("id", scalar(d.ID))
	add("level", scalar(string(d.Type)))
	add("title", quoted(d.Title))
	add("short_code", quoted(d.ShortCode))
	add("created_at", scalar(d.CreatedAt.UTC().Format(time.RFC3339)))
	add("updated_at", scalar(d.UpdatedAt.UTC().Format(time.RFC3339)))
	add("archived", boolScalar(d.Archived))
	if d.ParentID != "" {
		add("parent", scalar(d.ParentID))
	}
	add("blocked_by", flowSeq(d.BlockedBy, false))
	add("tags", blockSeq(tagsToStrings(d.Tags)))
	add("exit_criteria_met", boolScalar(d.ExitCriteriaMet))

	switch d.Type {
	case TypeVision:
		add("stakeholders", flowSeq(d.Stakeholders, true))
	case TypeStrategy:
		add("risk_level", scalar(string(d.RiskLevel)))
		add("stakeholders", flowSeq(d.Stakeholders, true))
		add("success_metrics", flowSeq(d.SuccessMetrics, true))
	case TypeInitiative:
		add("complexity", quoted(string(d.Complexity)))
		if d.TechnicalLead != "" {
			add("technical_lead", quoted(d.TechnicalLead))
		}
	case TypeADR:
		add("number", scalar(strconv.FormatUint(uint64(d.Number), 10)))
		add("decision_maker", quoted(d.DecisionMaker))
		if d.DecisionDate != nil {
			add("decision_date", scalar(d.DecisionDate.UTC().Format(time.RFC3339)))
		}
	}

	out, err := yaml.Marshal(node)
	if err != nil {
		return "", errors.ErrInvalidContent("cannot serialize frontmatter").WithCause(err)
	}
	return string(out), nil
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
}

func quoted(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: value}
}

func boolScalar(value bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(value)}
}

// flowSeq renders a string list inline: [] or ["a", "b"].
func flowSeq(values []string, quote bool) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, v := range values {
		if quote {
			seq.Content = append(seq.Content, quoted(v))
		} else {
			seq.Content = append(seq.Content, scalar(v))
		}
	}
	return seq
}

// blockSeq renders a string list one item per line, each double-quoted.
// Tags contain '#', so quoting keeps them from reading as YAML comments.
func blockSeq(values []string) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, v := range values {
		seq.Content = append(seq.Content, quoted(v))
	}
	return seq
}

func tagsToStrings(tags []Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}
