package demo

import (
	"fmt"
	"strings"

	"github.com/pablasso/smartplan/internal/plan"
)

type templateTask struct {
	name        string
	description string
	value       float64
	unit        string
	priority    string
	deps        []int
}

type template struct {
	name     string
	keywords []string
	tasks    []templateTask
}

// build numbers the tasks from 1 and mentions goal in the first description.
func (t template) build(goal string) []plan.GeneratedTask {
	out := make([]plan.GeneratedTask, len(t.tasks))
	for i, tt := range t.tasks {
		desc := tt.description
		if i == 0 && goal != "" {
			desc = fmt.Sprintf("%s Goal: %s", desc, goal)
		}
		deps := append([]int{}, tt.deps...)
		out[i] = plan.GeneratedTask{
			ID:                i + 1,
			Name:              tt.name,
			Description:       desc,
			EstimatedDuration: &plan.Duration{Value: tt.value, Unit: tt.unit},
			Priority:          tt.priority,
			Dependencies:      deps,
		}
	}
	return out
}

// match picks the first template with a keyword in goal, falling back to
// the generic one.
func match(goal string) template {
	g := strings.ToLower(goal)
	for _, t := range templates {
		for _, k := range t.keywords {
			if strings.Contains(g, k) {
				return t
			}
		}
	}
	return generic
}

var templates = []template{
	{
		name:     "software",
		keywords: []string{"app", "website", "api", "service", "software"},
		tasks: []templateTask{
			{"Define requirements", "List the user stories and acceptance criteria.", 3, "days", "High", nil},
			{"Design architecture", "Choose the stack and sketch the main components.", 2, "days", "High", []int{1}},
			{"Set up project", "Create the repository, CI pipeline and environments.", 4, "hours", "Medium", []int{2}},
			{"Build core features", "Implement the stories marked as must-have.", 3, "weeks", "High", []int{3}},
			{"Write tests", "Cover the core features with unit and integration tests.", 1, "weeks", "Medium", []int{4}},
			{"Beta release", "Ship to a small group of users and collect feedback.", 1, "weeks", "Medium", []int{5}},
			{"Fix feedback issues", "Triage beta feedback and fix the blocking issues.", 5, "days", "Medium", []int{6}},
			{"Launch", "Publish the release and announce it.", 1, "days", "Low", []int{7}},
		},
	},
	{
		name:     "learning",
		keywords: []string{"learn", "study", "course", "exam"},
		tasks: []templateTask{
			{"Pick resources", "Choose a primary course and one reference book.", 2, "hours", "High", nil},
			{"Make a schedule", "Block regular study sessions in the calendar.", 30, "minutes", "High", []int{1}},
			{"Cover the fundamentals", "Work through the introductory material.", 2, "weeks", "High", []int{2}},
			{"Practice exercises", "Solve exercises for each topic covered.", 3, "weeks", "Medium", []int{3}},
			{"Build a small project", "Apply what was learned end to end.", 2, "weeks", "Medium", []int{3}},
			{"Review weak spots", "Revisit the topics that caused trouble.", 1, "weeks", "Low", []int{4, 5}},
		},
	},
	{
		name:     "event",
		keywords: []string{"event", "party", "wedding", "conference", "trip"},
		tasks: []templateTask{
			{"Set budget", "Agree on the total budget and the main cost items.", 1, "days", "High", nil},
			{"Choose date and venue", "Shortlist venues and book one.", 1, "weeks", "High", []int{1}},
			{"Send invitations", "Prepare the guest list and send invites.", 3, "days", "Medium", []int{2}},
			{"Arrange suppliers", "Book catering, equipment and transport.", 2, "weeks", "Medium", []int{2}},
			{"Confirm details", "Reconfirm bookings and attendance.", 2, "days", "Medium", []int{3, 4}},
			{"Run the day", "Coordinate on the day and handle surprises.", 1, "days", "High", []int{5}},
			{"Follow up", "Settle invoices and send thanks.", 2, "days", "Low", []int{6}},
		},
	},
}

var generic = template{
	name: "generic",
	tasks: []templateTask{
		{"Clarify the outcome", "Write down what done looks like and how to measure it.", 2, "hours", "High", nil},
		{"Research options", "Look at how others approached the same goal.", 2, "days", "High", []int{1}},
		{"Draft a plan", "Break the work into milestones with owners.", 1, "days", "Medium", []int{2}},
		{"Gather resources", "Secure the tools, budget and people needed.", 1, "weeks", "Medium", []int{3}},
		{"Execute first milestone", "Deliver the first milestone and check progress.", 2, "weeks", "High", []int{4}},
		{"Review and adjust", "Compare results with the plan and adapt.", 3, "hours", "Medium", []int{5}},
		{"Finish remaining work", "Complete the remaining milestones.", 1, "months", "Medium", []int{6}},
		{"Retrospective", "Record lessons learned.", 1, "hours", "Low", []int{7}},
	},
}
