package gemini

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/phrazzld/capture-worker/internal/domain"
	"github.com/phrazzld/capture-worker/internal/generation"
)

// modeInstructions maps each generation mode to the role instructions
// prepended to the prompt. Unknown modes fall back to study.
var modeInstructions = map[domain.Mode]string{
	domain.ModeStudy: `Role: Meticulous graduate student teaching assistant.
Task: Organize the input into study materials.
Focus: Core concept definitions, logical structure, summaries, key points to memorize.
Output: Clean Markdown lecture note format.`,

	domain.ModeTech: `Role: IT technology trends specialist journalist.
Task: Analyze development news, release notes, and technical articles.
Focus:
- Core features and emergence context of new technologies.
- Advantages and disadvantages compared to existing technologies (trade-offs).
- Impact on the industry and key points developers should note.
Output: Technical blog post format, insight-focused.`,

	domain.ModeIdea: `Role: Creative planner (product manager).
Task: Derive business and creative ideas from this content.
Focus: Application methods, related service ideas, brainstorming.
Output: Idea note format.`,

	domain.ModeEconomy: `Role: Friendly economic and investment mentor.
Task: Provide commentary on charts or news to enable learning through investment knowledge.
Focus:
- Analyze market principles and causal relationships rather than simple buy/sell signals.
- Explain economic terms that appear and compare them to historical analogies.
- The impact of this phenomenon on the macroeconomy.
- Derive the mindset or insights an investor should possess.
Output: Economic learning notes format.`,

	domain.ModeGeneral: `Role: Competent knowledge archiving specialist.
Task: Identify the subject and context of input information, then organize it for easy future retrieval.
Focus: Topic identification, three-line summarization, structuring, tag suggestions.
Output: Easy-to-read Markdown format.`,
}

// promptTemplate wraps the mode instructions with the capture context and
// the output requirements shared by every mode.
const promptTemplate = `{{.Instructions}}

Language: English.
Input Type: {{.ContentType}}
Input Context: {{.InputContext}}
Capture Time: {{.CaptureTime}}

Output Requirements:
- Use Obsidian Markdown format.
- Begin with a single top-level heading line for the note title.
- Add tags: #{{.Mode}} #Inbox
`

var promptTmpl = template.Must(template.New("note").Parse(promptTemplate))

// promptData is the data passed to promptTmpl.
type promptData struct {
	Instructions string
	ContentType  domain.ContentType
	InputContext string
	CaptureTime  string
	Mode         domain.Mode
}

// buildPrompt renders the full prompt for a generation request. URL
// captures get an explicit instruction to analyze the target URL; the
// URL-context capability itself is enabled on the API call.
func buildPrompt(req generation.Request) (string, error) {
	mode := domain.ParseMode(string(req.Mode))

	inputContext := req.Content
	if req.ContentType == domain.ContentTypeURL {
		inputContext = fmt.Sprintf("Analyze the content at this URL and organize what it says: %s", req.Content)
	}

	data := promptData{
		Instructions: modeInstructions[mode],
		ContentType:  req.ContentType,
		InputContext: inputContext,
		CaptureTime:  req.CapturedAt.Format("2006-01-02 15:04"),
		Mode:         mode,
	}

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return buf.String(), nil
}
