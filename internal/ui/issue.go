package ui

import (
	"fmt"
	"strings"

	"github.com/sitproject/sit/internal/types"
)

// IssueOptions controls RenderIssue.
type IssueOptions struct {
	// Full disables truncation of long details
	Full bool
	// Markdown renders details and comments with glamour
	Markdown bool
}

const maxDetailLines = 20

// RenderIssueLine renders the one-line summary used by "sit items".
func RenderIssueLine(p types.Projection) string {
	summary := p.SummaryOr(RenderMuted("(no summary)"))
	line := fmt.Sprintf("%s  %s  %s", RenderAccent(p.ID), RenderState(p.State), TruncateSimple(FirstLine(summary), 72))
	if p.LastUpdatedTimestamp != nil {
		line += "  " + RenderMuted(*p.LastUpdatedTimestamp)
	}
	return line
}

// RenderIssue renders a projection for "sit show".
func RenderIssue(p types.Projection, opts IssueOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", RenderAccent(p.ID), RenderState(p.State))
	fmt.Fprintf(&b, "%s\n", CategoryStyle.Render(p.SummaryOr("(no summary)")))
	if p.Authors != nil || p.Timestamp != nil {
		fmt.Fprintf(&b, "%s\n", RenderMuted(attribution(deref(p.Authors), deref(p.Timestamp))))
	}
	if p.LastUpdatedTimestamp != nil {
		fmt.Fprintf(&b, "%s\n", RenderMuted("updated "+*p.LastUpdatedTimestamp))
	}

	if p.Details != nil && *p.Details != "" {
		b.WriteString("\n" + RenderCategory("Details") + "\n")
		b.WriteString(renderText(*p.Details, opts) + "\n")
	}

	if len(p.MergeRequests) > 0 {
		b.WriteString("\n" + RenderCategory("Merge requests") + "\n")
		for _, mr := range p.MergeRequests {
			line := TreeIndent + mr
			if p.MergeRequest != nil && *p.MergeRequest == mr {
				line += " " + RenderAccent("(current)")
			}
			for _, m := range p.Merges {
				if m.Record == mr {
					line += " " + RenderPass(IconPass+" merged as "+m.Hash)
				}
			}
			b.WriteString(line + "\n")
		}
	}

	if len(p.Comments) > 0 {
		b.WriteString("\n" + RenderCategory(fmt.Sprintf("Comments (%d)", len(p.Comments))) + "\n")
		for _, c := range p.Comments {
			b.WriteString(TreeIndent + RenderMuted(attribution(c.Authors, c.Timestamp)) + "\n")
			if c.MergeRequest != nil {
				mr := TreeIndent + TreeLast + "merge request " + *c.MergeRequest
				if c.MergeRequestReport != nil {
					mr += " " + RenderReport(*c.MergeRequestReport)
				}
				b.WriteString(mr + "\n")
			}
			b.WriteString(Indent(renderText(c.Text, opts), TreeIndent+TreeIndent) + "\n")
		}
	}

	return b.String()
}

func renderText(text string, opts IssueOptions) string {
	if !opts.Full {
		text = TruncateLines(text, maxDetailLines)
	}
	if opts.Markdown {
		return strings.TrimRight(RenderMarkdown(text), "\n")
	}
	return WrapText(text, min(TerminalWidth(80), maxReadableWidth))
}

func attribution(authors, timestamp string) string {
	switch {
	case authors == "" && timestamp == "":
		return "(unattributed)"
	case timestamp == "":
		return authors
	case authors == "":
		return timestamp
	}
	return authors + ", " + timestamp
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
