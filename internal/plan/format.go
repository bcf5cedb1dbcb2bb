package plan

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
)

const divider = "##############################################################################"

var (
	redBold   = color.New(color.FgRed, color.Bold)
	greenBold = color.New(color.FgGreen, color.Bold)
	blueBold  = color.New(color.FgBlue, color.Bold)
)

func errorMark() string   { return "[" + redBold.Sprint("ERROR") + "]" }
func successMark() string { return "[" + greenBold.Sprint("SUCCESS") + "]" }
func infoMark() string    { return "[" + blueBold.Sprint("INFO") + "]" }

// FormatText renders the plan as the classic queue table. A clean
// resolution prints the build queue; an ambiguous one prints the
// capability table followed by whatever part of the queue still resolved.
func FormatText(p *Plan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-80.80s\n", divider)

	if !p.Success() {
		fmt.Fprintf(&sb, "%-26s Cannot resolve %s\n\n", errorMark(), strings.Join(p.Requested, ", "))
		fmt.Fprintf(&sb, "%-36s %s\n", "AMBIGUOUS", "POTENTIALLY PROVIDED BY")
		for _, a := range p.Ambiguities {
			fmt.Fprintf(&sb, "%-36s %s\n", ambiguityLabel(a.Capability, a.Essential), causeOf(a.Candidates))
		}
		if len(p.Rows) > 0 {
			fmt.Fprintf(&sb, "\n%-22s %s\n", infoMark(), "DISAMBIGUATED")
			for _, r := range p.Rows {
				fmt.Fprintf(&sb, "%-36s %-40s %s\n", r.Name, displayPath(r.Artifact), strings.Join(r.Layers, ", "))
			}
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "%-22s %-22s %-28s %s\n", successMark(), "Build queue", "FILE/DIR", "LAYERS TO WRITE")
	for _, r := range p.Rows {
		fmt.Fprintf(&sb, "%-34s %-28s %s\n", r.Name, displayPath(r.Artifact), strings.Join(r.Layers, ", "))
	}
	return sb.String()
}

// FormatLevels renders the queue grouped into dependency stages.
func FormatLevels(p *Plan) string {
	var sb strings.Builder
	for i, stage := range p.Levels {
		fmt.Fprintf(&sb, "%-22s Stage %d\n", infoMark(), i+1)
		for _, r := range stage {
			fmt.Fprintf(&sb, "  %-32s %-28s %s\n", r.Name, displayPath(r.Artifact), strings.Join(r.Layers, ", "))
		}
	}
	return sb.String()
}

// FormatJSON renders the plan as indented JSON.
func FormatJSON(p *Plan) (string, error) {
	type jsonAmbiguity struct {
		Capability string   `json:"capability"`
		Candidates []string `json:"candidates"`
		Essential  bool     `json:"essential,omitempty"`
	}
	type jsonPlan struct {
		Success     bool            `json:"success"`
		Requested   []string        `json:"requested"`
		Queue       []Row           `json:"queue"`
		Ambiguities []jsonAmbiguity `json:"ambiguities,omitempty"`
		Levels      [][]Row         `json:"levels,omitempty"`
	}

	jp := jsonPlan{
		Success:   p.Success(),
		Requested: p.Requested,
		Queue:     p.Rows,
		Levels:    p.Levels,
	}
	for _, a := range p.Ambiguities {
		jp.Ambiguities = append(jp.Ambiguities, jsonAmbiguity{
			Capability: a.Capability,
			Candidates: a.Candidates,
			Essential:  a.Essential,
		})
	}

	data, err := json.MarshalIndent(jp, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

// causeOf describes why a capability is ambiguous: its candidate names
// sorted for display, or a note when nothing could ever provide it.
func causeOf(candidates []string) string {
	if len(candidates) == 0 {
		return "No target, no possible providers"
	}
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

func ambiguityLabel(capability string, essential bool) string {
	if essential {
		return capability + " (essential)"
	}
	return capability
}

func displayPath(path string) string {
	if path == "" {
		return "-"
	}
	return path
}
