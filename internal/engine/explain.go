package engine

import (
	"fmt"
	"strings"

	"acadtutor/internal/domain"
)

// LocalExplanation is the templated explanation served when no remote explanation is available.
func LocalExplanation(req domain.ExplainRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", req.Topic)
	fmt.Fprintf(&b, "%s is a topic in %s. This overview is written for %s level students.\n\n", req.Topic, req.Subject, req.AcademicLevel)
	b.WriteString("## Key ideas\n\n")
	fmt.Fprintf(&b, "- Start with a precise definition of %s and the vocabulary it relies on.\n", req.Topic)
	fmt.Fprintf(&b, "- Identify the core principles that make %s work.\n", req.Topic)
	fmt.Fprintf(&b, "- Connect %s to related topics in %s.\n", req.Topic, req.Subject)
	if req.Kind != domain.ExplanationQuick {
		b.WriteString("\n## Applying it\n\n")
		fmt.Fprintf(&b, "Work through a concrete example of %s step by step, then try a variation on your own. ", req.Topic)
		b.WriteString("Note where the approach breaks down; limitations are as instructive as successes.\n")
	}
	b.WriteString("\n## Next steps\n\n")
	fmt.Fprintf(&b, "Take a short quiz on %s to check your understanding and review the explanations for any question you miss.\n", req.Topic)
	return b.String()
}
