package gemini

import (
	"fmt"
	"strings"
	"time"

	"github.com/fastygo/taskwise/domain"
)

// Output token budgets per request kind.
const (
	maxTokensPriority    = 10
	maxTokensTitle       = 50
	maxTokensDescription = 200
	maxTokensGenerate    = 150
)

const dateLayout = "January 2, 2006"

func formatDue(due *time.Time) string {
	if due == nil {
		return "No due date"
	}
	return due.Format(dateLayout)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func priorityPrompt(q domain.PriorityQuery) string {
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}

	var b strings.Builder
	b.WriteString("Analyze the following task and determine its priority level based on urgency, importance, and workload:\n\n")
	b.WriteString("Task Details:\n")
	fmt.Fprintf(&b, "- Title: %q\n", q.Title)
	fmt.Fprintf(&b, "- Description: %q\n", orDefault(q.Description, "No description provided"))
	fmt.Fprintf(&b, "- Subject: %q\n", orDefault(q.Subject, "No subject specified"))
	fmt.Fprintf(&b, "- Due Date: %s\n", formatDue(q.DueDate))
	fmt.Fprintf(&b, "- Current Date: %s\n", now.Format(dateLayout))
	if extra := strings.TrimSpace(q.UserContext); extra != "" {
		fmt.Fprintf(&b, "- Additional Context: %q\n", extra)
	}
	b.WriteString(`
Priority Levels:
- critical: Major assignments, exams, projects with tight deadlines (within 1-2 days) or high academic weight
- high: Important assignments, tests, projects due within a week or with significant impact on grades
- medium: Regular assignments, homework with moderate deadlines (1-2 weeks)
- low: Minor tasks, practice exercises, low-stakes assignments with flexible deadlines
- none: Optional tasks, extra credit, or very low-priority items

Analyze the title and description content for these priority indicators:

HIGH PRIORITY KEYWORDS in title/description:
- "exam", "test", "quiz", "midterm", "final", "presentation"
- "project", "essay", "paper", "report", "thesis"
- "urgent", "ASAP", "important", "critical", "deadline"
- Numbers indicating length/scope: "5-page", "10 questions", "research"

MEDIUM PRIORITY KEYWORDS:
- "homework", "assignment", "worksheet", "practice"
- "review", "study", "prepare", "read"

LOW PRIORITY KEYWORDS:
- "optional", "extra credit", "bonus", "draft", "outline"
- "discussion post", "journal entry", "reflection"

WORKLOAD ESTIMATION from title/description:
- Long assignments: essays, research papers, projects (higher priority)
- Quick tasks: worksheets, discussion posts, reading (lower priority)
- Group work or presentations (often higher priority due to coordination)

Consider:
1. Time urgency (how close is the due date?)
2. Academic importance based on keywords in title/description
3. Workload estimation from title/description content
4. Subject context and typical assignment weights
5. Specific urgency language in title/description

Respond with ONLY one word: critical, high, medium, low, or none`)
	return b.String()
}

func optimizeTitlePrompt(q domain.RewriteQuery) string {
	return fmt.Sprintf(`Optimize this task title to be more concise and effective while maintaining its meaning:

Title: %q
Subject: %q

Return only the optimized title, nothing else.`, q.Title, orDefault(q.Subject, "General"))
}

func optimizeDescriptionPrompt(q domain.RewriteQuery) string {
	return fmt.Sprintf(`Optimize this task description to be more concise and effective while maintaining all important information:

Description: %q
Title: %q
Subject: %q

Return only the optimized description, nothing else.`,
		orDefault(q.Description, "No description provided"), q.Title, orDefault(q.Subject, "General"))
}

func generateDescriptionPrompt(q domain.RewriteQuery) string {
	return fmt.Sprintf(`Generate a helpful and concise description for this task based on the available details:

Task Details:
- Title: %q
- Subject: %q
- Due Date: %s

Create a description that:
1. Explains what needs to be done based on the title
2. Includes relevant context from the subject area
3. Mentions any time-sensitive aspects if there's a due date
4. Provides helpful details someone would need to complete this task
5. Keeps it concise but informative (2-3 sentences)

Return only the description, nothing else.`,
		q.Title, orDefault(q.Subject, "No subject specified"), formatDue(q.DueDate))
}
