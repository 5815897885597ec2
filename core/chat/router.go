// Package chat answers free-text questions: routine and exam lookups are served
// from the store, everything else goes to the generative model when one is configured.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/exam"
	"github.com/cpgs-hub/backend/core/resource"
	"github.com/cpgs-hub/backend/core/routine"
	"github.com/cpgs-hub/backend/core/sysconfig"
)

// Source tells which branch produced a Reply.
type Source string

const (
	SourceRoutine         Source = "routine"
	SourceExam            Source = "exam"
	SourceGenerative      Source = "generative"
	SourceGenerativeError Source = "generative_error"
	SourceCanned          Source = "canned"
)

const (
	// ContextResources caps the resources summarized in the prompt context.
	ContextResources = 20

	DefaultInstruction = "You are CPGS Hub AI, an academic assistant for university students. " +
		"You help with questions about syllabi, exams, routines, and general academic queries. Be concise and helpful."

	CannedReply = "🤖 I'm the CPGS Hub AI! I can help with class routines and exam schedules. Try asking:\n\n" +
		"• \"What's the routine for CSA-1 semester 5?\"\n" +
		"• \"When are the semester 5 exams?\"\n\n" +
		"_Full AI-powered answers are available when the Gemini API is configured._"

	noResourcesContext = "No resources uploaded yet."
)

var ErrEmptyMessage = core.NewInputError("Message required")

type (
	RoutineFinder interface {
		List(ctx context.Context, filter routine.QueryFilter) ([]routine.Routine, error)
	}

	ExamFinder interface {
		List(ctx context.Context, filter exam.QueryFilter) ([]exam.Exam, error)
	}

	ResourceLister interface {
		ListApproved(ctx context.Context, limit int) ([]resource.Resource, error)
	}

	// PromptSource holds the admin-settable system instruction.
	PromptSource interface {
		Value(ctx context.Context, key string) (value string, found bool, err error)
	}

	// Generator is the hosted generative model.
	Generator interface {
		Generate(ctx context.Context, prompt string) (string, error)
	}
)

type Reply struct {
	Text   string `json:"reply"`
	Source Source `json:"-"`
}

type Deps struct {
	Routines  RoutineFinder
	Exams     ExamFinder
	Resources ResourceLister
	Prompts   PromptSource
	Generator Generator // nil when no API key is configured
	Logger    core.Logger
}

type Router struct {
	Deps
}

func NewRouter(deps Deps) *Router {
	return &Router{Deps: deps}
}

// Reply routes one message, first match wins: routine intent, exam intent, then the generator.
// A matched intent without data falls through to the generator.
// Only store failures are returned as errors; generator failures become the canned reply.
func (r *Router) Reply(ctx context.Context, message string) (Reply, error) {
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	lower := strings.ToLower(message)

	switch {
	case isRoutineIntent(lower):
		if q, ok := routineQuery(message); ok {
			routines, err := r.Routines.List(ctx, q)
			if err != nil {
				return Reply{}, errors.Wrap(err, "querying routines")
			}
			if len(routines) > 0 {
				return Reply{Text: formatRoutine(routines[0]), Source: SourceRoutine}, nil
			}
		}
	case isExamIntent(lower):
		if q, ok := examQuery(message); ok {
			exams, err := r.Exams.List(ctx, q)
			if err != nil {
				return Reply{}, errors.Wrap(err, "querying exams")
			}
			if len(exams) > 0 {
				return Reply{Text: formatExams(exams), Source: SourceExam}, nil
			}
		}
	}

	if r.Generator == nil {
		return Reply{Text: CannedReply, Source: SourceCanned}, nil
	}
	return r.generate(ctx, message)
}

func (r *Router) generate(ctx context.Context, message string) (Reply, error) {
	resources, err := r.Resources.ListApproved(ctx, ContextResources)
	if err != nil {
		return Reply{}, errors.Wrap(err, "listing approved resources")
	}

	prompt := BuildPrompt(r.instruction(ctx), resourceContext(resources), message)
	text, err := r.Generator.Generate(ctx, prompt)
	if err != nil {
		r.Logger.Error(fmt.Sprintf("generative model failed: %v", err), err)
		return Reply{Text: CannedReply, Source: SourceGenerativeError}, nil
	}
	return Reply{Text: text, Source: SourceGenerative}, nil
}

// instruction returns the configured system instruction, or DefaultInstruction.
func (r *Router) instruction(ctx context.Context) string {
	if r.Prompts == nil {
		return DefaultInstruction
	}
	value, found, err := r.Prompts.Value(ctx, sysconfig.KeyAIPrompt)
	if err != nil {
		r.Logger.Warn("loading system prompt failed", err)
		return DefaultInstruction
	}
	if !found || strings.TrimSpace(value) == "" {
		return DefaultInstruction
	}
	return value
}

// BuildPrompt composes the single prompt sent to the generator.
func BuildPrompt(instruction, context, question string) string {
	return instruction + "\n\nContext:\n" + context + "\n\nStudent question: " + question + "\n\nAnswer concisely:"
}

func resourceContext(resources []resource.Resource) string {
	if len(resources) == 0 {
		return noResourcesContext
	}
	items := make([]string, 0, len(resources))
	for _, res := range resources {
		items = append(items, fmt.Sprintf("%s (%s, %s Sem %d)", res.SubjectName, res.Type, res.Branch, res.Semester))
	}
	return "Available resources: " + strings.Join(items, "; ")
}
