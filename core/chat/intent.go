package chat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/exam"
	"github.com/cpgs-hub/backend/core/routine"
)

var (
	routineKeywords = []string{"class", "routine", "schedule"}
	examKeywords    = []string{"exam", "mid-sem", "end-sem"}

	sectionRegex  = regexp.MustCompile(`(?i)([A-Z]{2,4}-\d)`)
	semesterRegex = regexp.MustCompile(`(?i)semester\s*(\d)`)
)

const examDateLayout = "2 Jan 2006"

// routineQuery extracts {section, semester} from msg.
// ok is false when neither is present, or when the query cannot match any routine.
func routineQuery(msg string) (q routine.QueryFilter, ok bool) {
	if m := sectionRegex.FindStringSubmatch(msg); m != nil {
		q.Section = strings.ToUpper(m[1])
		ok = true
	}
	if sem, found := semester(msg); found {
		if sem == 0 {
			return routine.QueryFilter{}, false
		}
		q.Semester = sem
		ok = true
	}
	return q, ok
}

// examQuery extracts the semester filter from msg. ok is false when the query cannot match any exam.
func examQuery(msg string) (q exam.QueryFilter, ok bool) {
	if sem, found := semester(msg); found {
		if sem == 0 {
			return exam.QueryFilter{}, false
		}
		q.Semester = sem
	}
	return q, true
}

// semester returns the number following "semester". Semesters start at 1:
// a zero filter means "any semester" to the stores, so callers must not query with an explicit 0.
func semester(msg string) (int, bool) {
	m := semesterRegex.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	sem, err := strconv.Atoi(m[1])
	return sem, err == nil
}

func isRoutineIntent(lower string) bool { return core.ContainsAny(lower, routineKeywords...) }

func isExamIntent(lower string) bool { return core.ContainsAny(lower, examKeywords...) }

func formatRoutine(r routine.Routine) string {
	days := make([]string, 0, len(r.Schedule))
	for _, d := range r.Schedule {
		classes := make([]string, 0, len(d.Classes))
		for _, c := range d.Classes {
			classes = append(classes, fmt.Sprintf("%s - %s (%s)", c.Time, c.Subject, c.Room))
		}
		days = append(days, fmt.Sprintf("**%s**: %s", d.Day, strings.Join(classes, ", ")))
	}
	return fmt.Sprintf("Here's the schedule for %s (Semester %d):\n\n%s", r.Section, r.Semester, strings.Join(days, "\n"))
}

func formatExams(exams []exam.Exam) string {
	lines := make([]string, 0, len(exams))
	for _, e := range exams {
		lines = append(lines, fmt.Sprintf("• **%s** - %s (%s)", e.Subject, e.Date.Format(examDateLayout), e.Type))
	}
	return "Upcoming exams:\n\n" + strings.Join(lines, "\n")
}
